package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"devmatch/config"
	"devmatch/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Presigner is the subset of *s3.PresignClient the service uses.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Service issues presigned URLs for profile photos.
type S3Service struct {
	Presigner Presigner
	Bucket    string
	Expiry    time.Duration
	Log       logger.Logger

	now func() time.Time
}

func NewS3Service(awsCfg aws.Config, cfg *config.Config, log logger.Logger) *S3Service {
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Service{
		Presigner: s3.NewPresignClient(client),
		Bucket:    cfg.S3.Bucket,
		Expiry:    cfg.S3.PresignExpiry,
		Log:       log,
	}
}

func (s *S3Service) expiry() time.Duration {
	if s.Expiry <= 0 {
		return 5 * time.Minute
	}
	return s.Expiry
}

func (s *S3Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// GenerateUploadURL generates a presigned URL for uploading a file. The
// returned key is what the profile stores as its photo.
func (s *S3Service) GenerateUploadURL(ctx context.Context, fileName, fileType string) (string, string, error) {
	key := "profile-pics/" + s.clock().UTC().Format("20060102150405") + "-" + path.Base(fileName)
	params := &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}
	presigned, err := s.Presigner.PresignPutObject(ctx, params, s3.WithPresignExpires(s.expiry()))
	if err != nil {
		return "", "", fmt.Errorf("failed to presign upload for '%s': %w", key, err)
	}
	return presigned.URL, key, nil
}

// GenerateReadURL generates a presigned URL for reading a file
func (s *S3Service) GenerateReadURL(ctx context.Context, key string) (string, error) {
	params := &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}
	presigned, err := s.Presigner.PresignGetObject(ctx, params, s3.WithPresignExpires(s.expiry()))
	if err != nil {
		return "", fmt.Errorf("failed to presign read for '%s': %w", key, err)
	}
	return presigned.URL, nil
}

// ResolvePhotoURL turns a stored photo key into something a client can
// load. Absolute URLs pass through; keys are presigned when a bucket is
// configured. Failures degrade to no photo.
func (s *S3Service) ResolvePhotoURL(ctx context.Context, key string) string {
	if key == "" || strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return key
	}
	if s.Bucket == "" {
		return ""
	}
	url, err := s.GenerateReadURL(ctx, key)
	if err != nil {
		s.Log.Warn("⚠️ Could not presign photo", "key", key, "err", err)
		return ""
	}
	return url
}
