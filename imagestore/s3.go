// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/danielhkuo/votedesk/cliparse"
)

// S3Store keeps images in an S3 compatible bucket
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Store(cfg cliparse.S3Config, baseURL string) *S3Store {
	awsCfg := aws.Config{
		Region: cfg.Region,

		RetryMaxAttempts: 3,
		RetryMode:        aws.RetryModeStandard,
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = aws.CredentialsProviderFunc(func(_ context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     cfg.AccessKeyID,
				SecretAccessKey: cfg.SecretAccessKey,
				Source:          "votedesk-cfg",
			}, nil
		})
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Custom endpoints (minio, localstack, tests) address buckets by path
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Store{client: client, bucket: cfg.Bucket, baseURL: baseURL}
}

func (s *S3Store) Put(ctx context.Context, name, contentType string, body io.Reader) (Object, error) {
	// The SDK needs a seekable body to sign and checksum the upload
	data, err := io.ReadAll(body)
	if err != nil {
		return Object{}, fmt.Errorf("failed to read image: %w", err)
	}

	key := newKey(name)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return Object{}, fmt.Errorf("failed to upload image: %w", err)
	}

	return Object{Key: key, URL: s.baseURL + "/" + key}, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
