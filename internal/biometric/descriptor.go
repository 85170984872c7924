// Package biometric holds face descriptors, the extractor boundary, capture
// decoding and the capture archive. Matching lives in the matcher subpackage.
package biometric

import (
	"context"
	"fmt"
)

// Descriptor is a fixed-length face feature vector produced by an Extractor.
type Descriptor []float64

// Comparable reports whether d has exactly the expected length.
// Descriptors are never truncated or padded to fit.
func (d Descriptor) Comparable(length int) bool {
	return len(d) > 0 && len(d) == length
}

// Clone returns an independent copy.
func (d Descriptor) Clone() Descriptor {
	if d == nil {
		return nil
	}
	out := make(Descriptor, len(d))
	copy(out, d)
	return out
}

// Extractor turns an image into zero or more descriptors.
// An empty result means no face was found.
type Extractor interface {
	Extract(ctx context.Context, image []byte) ([]Descriptor, error)
}

// CaptureArchive keeps raw captures for later review.
type CaptureArchive interface {
	Archive(ctx context.Context, capture Capture) error
}

// CaptureKind tags why an image was captured.
type CaptureKind string

const (
	CaptureRegistration CaptureKind = "register"
	CaptureLogin        CaptureKind = "login"
)

// Capture is a decoded image with the context it was taken in.
type Capture struct {
	Kind        CaptureKind
	Subject     string
	Image       []byte
	ContentType string
	UnixMilli   int64
}

// Name is the archive object name, e.g. "register_ABC123456_1700000000000.jpg".
func (c Capture) Name() string {
	return fmt.Sprintf("%s_%s_%d%s", c.Kind, c.Subject, c.UnixMilli, extensionFor(c.ContentType))
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
