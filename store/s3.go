package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type s3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store reads s3://<bucket>/<prefix><app><suffix>.
type S3Store struct {
	bucket string
	prefix string
	kind   Kind
	s3     s3GetObjectAPI
}

func NewS3Store(client s3GetObjectAPI, bucket, prefix string, kind Kind) *S3Store {
	return &S3Store{
		bucket: bucket,
		prefix: prefix,
		kind:   kind,
		s3:     client,
	}
}

func (s *S3Store) Load(ctx context.Context, name string) ([]byte, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	key := s.prefix + s.kind.Key(name)
	resp, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s object from S3: %w", s.kind.Name, err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
