package biometric

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

func TestDecodeImage(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(pngBytes)

	t.Run("data URL", func(t *testing.T) {
		img, err := DecodeImage("data:image/png;base64," + encoded)
		require.NoError(t, err)
		assert.Equal(t, pngBytes, img.Data)
		assert.Equal(t, "image/png", img.ContentType)
	})

	t.Run("bare base64", func(t *testing.T) {
		img, err := DecodeImage(encoded)
		require.NoError(t, err)
		assert.Equal(t, pngBytes, img.Data)
	})

	t.Run("unpadded base64", func(t *testing.T) {
		img, err := DecodeImage(base64.RawStdEncoding.EncodeToString(pngBytes))
		require.NoError(t, err)
		assert.Equal(t, pngBytes, img.Data)
	})

	cases := map[string]string{
		"empty":          "   ",
		"not base64":     "data:image/png;base64,!!!not-base64!!!",
		"not an image":   base64.StdEncoding.EncodeToString([]byte(`{"hello":"world"}`)),
		"non-base64 url": "data:image/png," + encoded,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeImage(raw)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		})
	}
}

func TestCaptureName(t *testing.T) {
	c := Capture{Kind: CaptureLogin, Subject: "ABC123456", ContentType: "image/png", UnixMilli: 1700000000000}
	assert.Equal(t, "login_ABC123456_1700000000000.png", c.Name())

	c.ContentType = "image/jpeg"
	assert.Equal(t, "login_ABC123456_1700000000000.jpg", c.Name())
}

func TestDescriptorComparable(t *testing.T) {
	assert.True(t, Descriptor{1, 2, 3}.Comparable(3))
	assert.False(t, Descriptor{1, 2}.Comparable(3))
	assert.False(t, Descriptor(nil).Comparable(0))

	d := Descriptor{1, 2}
	c := d.Clone()
	c[0] = 9
	assert.Equal(t, 1.0, d[0])
}
