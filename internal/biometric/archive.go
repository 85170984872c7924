package biometric

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// NopArchive discards captures.
type NopArchive struct{}

func (NopArchive) Archive(context.Context, Capture) error { return nil }

// FileArchive writes captures into a local directory.
type FileArchive struct {
	dir string
}

// NewFileArchive creates dir if needed.
func NewFileArchive(dir string) (*FileArchive, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create capture dir: %w", err)
	}
	return &FileArchive{dir: dir}, nil
}

func (a *FileArchive) Archive(_ context.Context, capture Capture) error {
	name := filepath.Join(a.dir, filepath.Base(capture.Name()))
	if err := os.WriteFile(name, capture.Image, 0o600); err != nil {
		return fmt.Errorf("write capture: %w", err)
	}
	return nil
}

// S3Archive uploads captures to a bucket under a prefix.
type S3Archive struct {
	client s3iface.S3API
	bucket string
	prefix string
	log    *slog.Logger
}

// NewS3Archive builds a client from the default AWS credential chain.
func NewS3Archive(bucket, prefix, region string, log *slog.Logger) (*S3Archive, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewS3ArchiveWithClient(s3.New(sess), bucket, prefix, log), nil
}

// NewS3ArchiveWithClient wires an existing S3 client.
func NewS3ArchiveWithClient(client s3iface.S3API, bucket, prefix string, log *slog.Logger) *S3Archive {
	return &S3Archive{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		log:    log,
	}
}

func (a *S3Archive) Archive(ctx context.Context, capture Capture) error {
	key := path.Join(a.prefix, capture.Name())
	_, err := a.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(a.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(capture.Image),
		ContentType:          aws.String(capture.ContentType),
		ServerSideEncryption: aws.String(s3.ServerSideEncryptionAes256),
	})
	if err != nil {
		return fmt.Errorf("upload capture to s3: %w", err)
	}
	a.log.DebugContext(ctx, "capture archived",
		slog.String("bucket", a.bucket),
		slog.String("key", key),
		slog.String("kind", string(capture.Kind)),
	)
	return nil
}
