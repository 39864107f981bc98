package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/fridgechef/backend/config"
)

// S3Uploader is the subset of the S3 client the image service needs.
type S3Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageService stores user-uploaded images (avatars, fridge item photos)
// in S3 and returns their public URLs.
type ImageService struct {
	client  S3Uploader
	bucket  string
	baseURL string
}

// NewImageService builds an image service from the application config,
// loading AWS credentials from the environment.
func NewImageService(ctx context.Context, cfg *config.Config) (*ImageService, error) {
	if cfg.S3.Bucket == "" {
		return nil, &ConfigurationError{Reason: "S3 bucket is not configured"}
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &ImageService{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.S3.Bucket,
		baseURL: cfg.S3.BaseURL,
	}, nil
}

// NewImageServiceWithClient builds an image service around an existing
// client. Used by tests.
func NewImageServiceWithClient(client S3Uploader, bucket, baseURL string) *ImageService {
	return &ImageService{client: client, bucket: bucket, baseURL: baseURL}
}

// UploadAvatar stores a user's avatar and returns its public URL.
func (s *ImageService) UploadAvatar(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("avatars/%s%s", userID, extensionFor(contentType))
	return s.upload(ctx, key, data, contentType)
}

// UploadItemImage stores a fridge item photo and returns its public URL.
func (s *ImageService) UploadItemImage(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("items/%s/%s%s", userID, uuid.New(), extensionFor(contentType))
	return s.upload(ctx, key, data, contentType)
}

func (s *ImageService) upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	if s.baseURL != "" {
		return strings.TrimSuffix(s.baseURL, "/") + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key), nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
