package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/JorgeRod2594/feature-hub/pkg/feature"
)

// GetObjectAPI is the slice of the S3 client the backend uses.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 fetches modules from S3. Sources are either keys into the
// configured bucket ("apps/checkout.json") or full object URLs
// ("s3://bucket/apps/checkout.json").
type S3 struct {
	client  GetObjectAPI
	bucket  string
	maxSize int64
	decoder *Decoder
}

// S3Option configures an S3 backend.
type S3Option func(*S3)

// WithS3MaxSize caps the module size in bytes.
func WithS3MaxSize(n int64) S3Option {
	return func(s *S3) { s.maxSize = n }
}

// NewS3 creates a backend reading from bucket via client.
func NewS3(client GetObjectAPI, bucket string, dec *Decoder, opts ...S3Option) *S3 {
	s := &S3{client: client, bucket: bucket, maxSize: DefaultMaxModuleSize, decoder: dec}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadModule implements manager.ModuleLoader.
func (s *S3) LoadModule(ctx context.Context, src string) (*feature.Definition, error) {
	bucket, key, err := s.object(src)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("module %q: %w", src, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch module %q: %w", src, err)
	}
	defer out.Body.Close()

	data, err := readCapped(out.Body, s.maxSize)
	if err != nil {
		return nil, fmt.Errorf("fetch module %q: %w", src, err)
	}
	return s.decoder.Decode(ctx, src, data)
}

func (s *S3) object(src string) (bucket, key string, err error) {
	u, parseErr := url.Parse(src)
	if parseErr == nil && u.Scheme == "s3" {
		bucket = u.Host
		key = strings.TrimPrefix(u.Path, "/")
	} else {
		bucket = s.bucket
		key = src
	}
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("module source %q: no bucket or key: %w", src, ErrUnsupported)
	}
	return bucket, key, nil
}
