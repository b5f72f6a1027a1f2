package audiostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/podhaven/podhaven/internal/config"
	"github.com/podhaven/podhaven/internal/utils/apiError"
)

const audioContentType = "audio/mpeg"

type s3Service struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func NewS3Service(ctx context.Context, c config.AudioStoreS3Config) (Service, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(c.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)

	return &s3Service{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  c.Bucket,
	}, nil
}

func (s *s3Service) Upload(ctx context.Context, key string, reader io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(audioContentType),
	})
	if err != nil {
		return fmt.Errorf("putting object %q: %w", key, err)
	}

	return nil
}

func (s *s3Service) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return nil, fmt.Errorf("object %q: %w", key, apiError.ErrApiAudioNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting object %q: %w", key, err)
	}

	return output.Body, nil
}

func (s *s3Service) Delete(ctx context.Context, key string) error {
	// s3 deletes are idempotent, a missing key still succeeds
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting object %q: %w", key, err)
	}

	return nil
}

func (s *s3Service) BulkDelete(ctx context.Context, keys []string) []KeyResult {
	var results []KeyResult

	for start := 0; start < len(keys); start += MaxDeleteBatch {
		end := start + MaxDeleteBatch
		if end > len(keys) {
			end = len(keys)
		}

		results = append(results, s.deleteBatch(ctx, keys[start:end])...)
	}

	return results
}

func (s *s3Service) deleteBatch(ctx context.Context, keys []string) []KeyResult {
	objects := make([]types.ObjectIdentifier, len(keys))
	for i, key := range keys {
		objects[i] = types.ObjectIdentifier{
			Key: aws.String(key),
		}
	}

	output, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		// the whole batch failed, report the error for every key
		results := make([]KeyResult, len(keys))
		for i, key := range keys {
			results[i] = KeyResult{
				Key: key,
				Err: fmt.Errorf("deleting objects: %w", err),
			}
		}
		return results
	}

	failed := make(map[string]error, len(output.Errors))
	for _, e := range output.Errors {
		failed[aws.ToString(e.Key)] = fmt.Errorf("deleting object: %s (%s)", aws.ToString(e.Message), aws.ToString(e.Code))
	}

	results := make([]KeyResult, len(keys))
	for i, key := range keys {
		results[i] = KeyResult{
			Key: key,
			Err: failed[key],
		}
	}

	return results
}

func (s *s3Service) PlayUrl(ctx context.Context, key string) (string, time.Duration, error) {
	request, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = PresignExpiry
	})
	if err != nil {
		return "", 0, fmt.Errorf("presigning object %q: %w", key, err)
	}

	return request.URL, PresignExpiry, nil
}
