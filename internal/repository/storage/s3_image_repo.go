package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	cfg "github.com/fitformula/fitformula-backend/internal/config"
	"github.com/rs/zerolog/log"
)

// S3ImageRepository implements ImageRepository on an S3-compatible bucket
type S3ImageRepository struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

// objectCacheControl applies to every upload. Keys embed a fresh UUID, so an
// object never changes once written.
const objectCacheControl = "private, max-age=31536000, immutable"

// NewS3ImageRepository connects to the workout image bucket, creating it when missing
func NewS3ImageRepository(ctx context.Context, s3cfg cfg.S3Config) (*S3ImageRepository, error) {
	client, err := newS3Client(ctx, s3cfg)
	if err != nil {
		return nil, err
	}

	repo := &S3ImageRepository{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    s3cfg.Bucket,
	}
	if err := repo.ensureBucket(ctx); err != nil {
		return nil, err
	}

	log.Info().Str("bucket", s3cfg.Bucket).Str("region", s3cfg.Region).Msg("Workout image storage ready")
	return repo, nil
}

func newS3Client(ctx context.Context, s3cfg cfg.S3Config) (*s3.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(s3cfg.Region)}
	if s3cfg.AccessKeyID != "" && s3cfg.SecretAccessKey != "" {
		static := credentials.NewStaticCredentialsProvider(s3cfg.AccessKeyID, s3cfg.SecretAccessKey, "")
		loadOpts = append(loadOpts, config.WithCredentialsProvider(static))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// MinIO and LocalStack need path-style addressing
		if s3cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// ensureBucket creates the bucket if it does not exist. The bucket stays private.
func (r *S3ImageRepository) ensureBucket(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket %s: %w", r.bucket, err)
	}

	_, err = r.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// Upload stores an object and returns its key. A negative size buffers the body first.
func (r *S3ImageRepository) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	var body io.Reader = data
	if size < 0 {
		buf, err := io.ReadAll(data)
		if err != nil {
			return "", fmt.Errorf("failed to read data: %w", err)
		}
		size = int64(len(buf))
		body = bytes.NewReader(buf)
	}

	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(objectPath),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		CacheControl:  aws.String(objectCacheControl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", objectPath, err)
	}
	return objectPath, nil
}

// Delete removes an object from S3 storage
func (r *S3ImageRepository) Delete(ctx context.Context, objectPath string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(objectPath),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectPath, err)
	}
	return nil
}

// DeleteMany removes several objects in one request; missing keys are ignored by S3
func (r *S3ImageRepository) DeleteMany(ctx context.Context, objectPaths []string) error {
	if len(objectPaths) == 0 {
		return nil
	}
	ids := make([]types.ObjectIdentifier, 0, len(objectPaths))
	for _, p := range objectPaths {
		ids = append(ids, types.ObjectIdentifier{Key: aws.String(p)})
	}
	out, err := r.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(r.bucket),
		Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to delete objects: %w", err)
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("failed to delete %d of %d objects (first %s: %s)",
			len(out.Errors), len(objectPaths), aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return nil
}

// GeneratePresignedURL returns a time-limited GET URL for a private object
func (r *S3ImageRepository) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	presignedReq, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(objectPath),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return presignedReq.URL, nil
}
