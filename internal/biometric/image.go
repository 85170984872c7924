package biometric

import (
	"encoding/base64"
	"net/http"
	"strings"

	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
)

// DecodedImage is a capture decoded from its transport form.
type DecodedImage struct {
	Data        []byte
	ContentType string
}

// DecodeImage accepts a data URL ("data:image/png;base64,...") or bare base64.
// The payload must sniff as an image.
func DecodeImage(raw string) (DecodedImage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DecodedImage{}, dErrors.New(dErrors.CodeBadRequest, "image is required")
	}

	encoded := raw
	if header, payload, ok := strings.Cut(raw, ","); ok {
		if strings.HasPrefix(header, "data:") && !strings.HasSuffix(header, ";base64") {
			return DecodedImage{}, dErrors.New(dErrors.CodeBadRequest, "image data URL must be base64 encoded")
		}
		encoded = payload
	}

	data, err := decodeBase64(encoded)
	if err != nil {
		return DecodedImage{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "image is not valid base64")
	}
	if len(data) == 0 {
		return DecodedImage{}, dErrors.New(dErrors.CodeBadRequest, "image is empty")
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return DecodedImage{}, dErrors.New(dErrors.CodeBadRequest, "payload is not an image")
	}
	return DecodedImage{Data: data, ContentType: contentType}, nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
