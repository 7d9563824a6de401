package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Options configures the S3 backend
type S3Options struct {
	Bucket string
	Prefix string
	Region string
	// Endpoint selects an S3-compatible service; path-style addressing is used with it
	Endpoint string
	// PublicURL is the base for links to stored objects. The prefix is
	// appended to it, as it is to the default bucket URL.
	PublicURL string
}

// S3 keeps files in an S3 bucket
type S3 struct {
	client    *s3.Client
	bucket    string
	prefix    string
	publicURL string
}

// NewS3 loads the default AWS credential chain and builds the client
func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	prefix := strings.Trim(opts.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	publicURL := opts.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}

	return &S3{
		client:    client,
		bucket:    opts.Bucket,
		prefix:    prefix,
		publicURL: publicURL,
	}, nil
}

func (s *S3) key(ref string) string {
	return s.prefix + ref
}

// Save uploads data under category/name, picking a free key
func (s *S3) Save(ctx context.Context, category, name string, data []byte) (string, error) {
	if err := validateName(category, name); err != nil {
		return "", err
	}

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		ref := Ref(category, candidate(name, attempt))

		exists, err := s.Exists(ctx, ref)
		if err != nil {
			return "", err
		}
		if exists {
			continue
		}

		_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(s.key(ref)),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(http.DetectContentType(data)),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload object to S3: %w", err)
		}

		return ref, nil
	}

	return "", fmt.Errorf("no free key for %s/%s", category, name)
}

// Exists checks the object with a HEAD request
func (s *S3) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	})
	if err == nil {
		return true, nil
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to head object in S3: %w", err)
}

// URL returns the public URL of ref
func (s *S3) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return joinURL(s.publicURL, s.key(ref))
}
