package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"menuplanner/menu"
)

// S3Store persists snapshots as JSON objects under a bucket prefix.
type S3Store struct {
	bucket string
	prefix string
	s3     *s3.Client
}

func NewS3Store(s3Client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{
		bucket: bucket,
		prefix: prefix,
		s3:     s3Client,
	}
}

func (s *S3Store) objectKey(key Key) string {
	return path.Join(s.prefix, key.FileName())
}

func (s *S3Store) Get(ctx context.Context, key Key) (menu.MenuSnapshot, error) {
	resp, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to get menu snapshot from S3: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu snapshot from S3: %w", err)
	}

	var snapshot menu.MenuSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode menu snapshot: %w", err)
	}
	return snapshot, nil
}

func (s *S3Store) Put(ctx context.Context, key Key, snapshot menu.MenuSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode menu snapshot: %w", err)
	}

	_, err = s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put menu snapshot to S3: %w", err)
	}
	return nil
}
