package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric/matcher"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/service"
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/identity/store"
	registrystore "github.com/bhumeshparihar/e-matdaan-voting-system/internal/registry/store"
	"github.com/bhumeshparihar/e-matdaan-voting-system/pkg/testutil"
)

const pngSignature = "\x89PNG\r\n\x1a\n"

// faceExtractor returns the descriptor registered for the bytes after the PNG
// signature.
type faceExtractor map[string]biometric.Descriptor

func (f faceExtractor) Extract(_ context.Context, image []byte) ([]biometric.Descriptor, error) {
	d, ok := f[strings.TrimPrefix(string(image), pngSignature)]
	if !ok {
		return nil, nil
	}
	return []biometric.Descriptor{d}, nil
}

func dataURL(face string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(pngSignature+face))
}

func newIdentityRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	voters := registrystore.NewInMemory()
	_, err := voters.Seed(context.Background(), registrystore.DefaultVoters())
	require.NoError(t, err)

	m, err := matcher.New(0.48, 3)
	require.NoError(t, err)
	extractor := faceExtractor{
		"amit":  {0.1, 0.2, 0.3},
		"priya": {0.7, 0.7, 0.7},
	}
	svc, err := service.New(store.NewInMemory(), voters, extractor, m, service.WithLogger(logger))
	require.NoError(t, err)

	h := New(svc, logger)
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterSessionRoutes(r)
	return r
}

func register(t *testing.T, router http.Handler, aadhaar, face string) {
	t.Helper()
	rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/register", map[string]string{
		"name": "Amit Kumar", "aadhaar": aadhaar, "phone": "9876543210", "image": dataURL(face),
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRegisterHandler(t *testing.T) {
	router := newIdentityRouter(t)

	testutil.Given(t, "a new aadhaar", func(t *testing.T) {
		rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/register", map[string]string{
			"name": "Amit Kumar", "aadhaar": "123412341234", "phone": "9876543210", "image": dataURL("amit"),
		}))
		testutil.Then(t, "it responds 201 with the user", func(t *testing.T) {
			assert.Equal(t, http.StatusCreated, rec.Code)
			assert.JSONEq(t, `{"message":"registered","user":{"name":"Amit Kumar","aadhaar":"123412341234"}}`, rec.Body.String())
		})
	})

	testutil.Given(t, "the same aadhaar again", func(t *testing.T) {
		rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/register", map[string]string{
			"name": "Other", "aadhaar": "123412341234", "phone": "9000000000", "image": dataURL("priya"),
		}))
		testutil.AssertStatus(t, rec, http.StatusConflict)
		testutil.AssertErrorCode(t, rec, "conflict")
	})

	testutil.Given(t, "missing fields", func(t *testing.T) {
		rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/register", map[string]string{
			"aadhaar": "555566667777",
		}))
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
		assert.Contains(t, rec.Body.String(), "missing fields")
	})

	testutil.Given(t, "an image without a face", func(t *testing.T) {
		rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/register", map[string]string{
			"name": "Nobody", "aadhaar": "555566667777", "phone": "9876543210", "image": dataURL("blank wall"),
		}))
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
		testutil.AssertErrorCode(t, rec, "biometric_quality")
	})

	testutil.Given(t, "an image that is not base64", func(t *testing.T) {
		rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/register", map[string]string{
			"name": "Nobody", "aadhaar": "555566667777", "phone": "9876543210", "image": "%%%",
		}))
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
	})
}

func TestLoginFaceHandler(t *testing.T) {
	router := newIdentityRouter(t)
	register(t, router, "123412341234", "amit")

	t.Run("recognised face", func(t *testing.T) {
		rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/login_face", map[string]string{
			"aadhaar": "123412341234", "phone": "9876543210", "image": dataURL("amit"),
		}))
		require.Equal(t, http.StatusOK, rec.Code)
		resp := testutil.UnmarshalResponse[loginResponse](t, rec)
		assert.True(t, resp.Success)
		assert.Equal(t, "Amit Kumar", resp.User.Name)
		assert.Nil(t, resp.User.VoterID)
		assert.Zero(t, resp.Distance)
	})

	t.Run("different face", func(t *testing.T) {
		rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/login_face", map[string]string{
			"aadhaar": "123412341234", "phone": "9876543210", "image": dataURL("priya"),
		}))
		testutil.AssertStatus(t, rec, http.StatusUnauthorized)
		assert.Contains(t, rec.Body.String(), "face not recognized")
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/login_face", map[string]string{
			"aadhaar": "999999999999", "phone": "9876543210", "image": dataURL("amit"),
		}))
		testutil.AssertStatus(t, rec, http.StatusNotFound)
	})
}

func TestLinkVoterHandler(t *testing.T) {
	router := newIdentityRouter(t)
	register(t, router, "123412341234", "amit")

	body := map[string]string{
		"aadhaar": "123412341234", "phone": "9876543210", "voterID": "ABC123456", "dob": "1990-05-15",
	}

	t.Run("session for another identity is forbidden", func(t *testing.T) {
		req := testutil.WithSubject(testutil.NewJSONRequest(t, http.MethodPost, "/api/link_voter", body), "777788889999")
		rec := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rec, http.StatusForbidden)
	})

	t.Run("wrong date of birth", func(t *testing.T) {
		wrong := map[string]string{
			"aadhaar": "123412341234", "phone": "9876543210", "voterID": "ABC123456", "dob": "1990-01-01",
		}
		req := testutil.WithSubject(testutil.NewJSONRequest(t, http.MethodPost, "/api/link_voter", wrong), "123412341234")
		rec := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rec, http.StatusBadRequest)
		testutil.AssertErrorCode(t, rec, "validation_error")
	})

	t.Run("links the voter", func(t *testing.T) {
		req := testutil.WithSubject(testutil.NewJSONRequest(t, http.MethodPost, "/api/link_voter", body), "123412341234")
		rec := testutil.DoRequest(router, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"linked","user":{"aadhaar":"123412341234","voterID":"ABC123456"}}`, rec.Body.String())
	})

	t.Run("login now reports the voter id", func(t *testing.T) {
		rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/login_face", map[string]string{
			"aadhaar": "123412341234", "phone": "9876543210", "image": dataURL("amit"),
		}))
		require.Equal(t, http.StatusOK, rec.Code)
		resp := testutil.UnmarshalResponse[loginResponse](t, rec)
		require.NotNil(t, resp.User.VoterID)
		assert.Equal(t, "ABC123456", resp.User.VoterID.String())
	})
}
