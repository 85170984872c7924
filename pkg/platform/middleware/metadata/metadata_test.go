package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	t.Run("first forwarded address wins", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		assert.Equal(t, "203.0.113.7", ClientIPFromRequest(r))
	})

	t.Run("falls back to remote addr without port", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "192.0.2.10:4321"
		assert.Equal(t, "192.0.2.10", ClientIPFromRequest(r))
	})
}

func TestClientMetadataMiddleware(t *testing.T) {
	var device, ip string
	h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		device = requestcontext.Device(r.Context())
		ip = requestcontext.ClientIP(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Real-IP", "198.51.100.3")
	r.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "198.51.100.3", ip)
	assert.Contains(t, device, "Chrome/")
	assert.NotContains(t, device, "unknown/")
}

func TestDeviceLabelEmpty(t *testing.T) {
	assert.Equal(t, "unknown", DeviceLabel(""))
}
