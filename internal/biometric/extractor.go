package biometric

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
)

// HTTPExtractor calls an external face service that returns descriptors for an
// uploaded image. The service replies {"descriptors": [[...], ...]}.
type HTTPExtractor struct {
	Client *http.Client
	URL    string
}

// NewHTTPExtractor returns an extractor with its own bounded client.
func NewHTTPExtractor(url string, timeout time.Duration) *HTTPExtractor {
	return &HTTPExtractor{
		Client: &http.Client{Timeout: timeout},
		URL:    url,
	}
}

type extractResponse struct {
	Descriptors [][]float64 `json:"descriptors"`
}

// Extract posts the raw image and decodes the descriptor list.
func (e *HTTPExtractor) Extract(ctx context.Context, image []byte) ([]Descriptor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("could not initialize extractor request: %w", err)
	}
	req.Header.Set("Content-Type", http.DetectContentType(image))
	req.Header.Set("Accept", "application/json")

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "face service timed out")
		}
		return nil, fmt.Errorf("could not reach face service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("could not read face service response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity:
		// The service could not find a face in the image.
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("face service returned %d: %s", resp.StatusCode, truncate(body, 256))
	}

	var parsed extractResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("could not parse face service response: %w", err)
	}
	out := make([]Descriptor, 0, len(parsed.Descriptors))
	for _, d := range parsed.Descriptors {
		out = append(out, Descriptor(d))
	}
	return out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// FirstDescriptor returns the first extracted descriptor, or a biometric
// quality error when none was found or it has the wrong length.
func FirstDescriptor(ctx context.Context, extractor Extractor, image []byte, length int) (Descriptor, error) {
	descriptors, err := extractor.Extract(ctx, image)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeTimeout) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "descriptor extraction failed")
	}
	if len(descriptors) == 0 {
		return nil, dErrors.New(dErrors.CodeBiometricQuality, "no face detected or poor image quality")
	}
	first := descriptors[0]
	if !first.Comparable(length) {
		return nil, dErrors.New(dErrors.CodeBiometricQuality, fmt.Sprintf("descriptor has %d dimensions, expected %d", len(first), length))
	}
	return first.Clone(), nil
}
