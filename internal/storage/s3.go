// Package storage archives submitted media to S3 so reviewers can see
// the original content after the inline bytes are gone.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"moderation-api/internal/pkg/errors"
)

type MediaStore interface {
	Archive(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type s3Store struct {
	client *s3.S3
	bucket string
	region string
}

func NewS3Store(bucket, region string) (MediaStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create AWS session")
	}

	return &s3Store{
		client: s3.New(sess),
		bucket: bucket,
		region: region,
	}, nil
}

// Archive uploads the media bytes and returns the object URL.
func (s *s3Store) Archive(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to upload media to S3")
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
