package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/mealdiary/backend/config"
)

// PhotoService stores meal photos in S3 and hands out presigned URLs
// for viewing them. Objects stay private; only the URLs expire.
type PhotoService struct {
	s3Config *config.S3Config
}

// Ensure PhotoService implements IPhotoService
var _ IPhotoService = (*PhotoService)(nil)

func NewPhotoService(s3Config *config.S3Config) *PhotoService {
	return &PhotoService{
		s3Config: s3Config,
	}
}

// UploadMealPhoto stores one photo under the owning user's prefix and
// returns the object key to persist on the meal log.
func (s *PhotoService) UploadMealPhoto(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("%s/%d_%s.jpg", userID, time.Now().Unix(), uuid.New())

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	log.Printf("[PhotoService] uploaded meal photo: %s", key)
	return key, nil
}

// photoURLExpiry bounds how long a handed-out photo URL stays valid.
const photoURLExpiry = 15 * time.Minute

// PhotoURL returns a presigned GET URL for a stored photo key.
func (s *PhotoService) PhotoURL(ctx context.Context, key string) (string, error) {
	return s.s3Config.GeneratePresignedURL(ctx, key, photoURLExpiry)
}

// PhotoURLs resolves a list of stored keys to presigned URLs, keeping
// order. A key that fails to presign is skipped with a log line so one
// bad object does not hide the rest.
func (s *PhotoService) PhotoURLs(ctx context.Context, keys []string) []string {
	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		url, err := s.PhotoURL(ctx, key)
		if err != nil {
			log.Printf("[PhotoService] failed to presign %s: %v", key, err)
			continue
		}
		urls = append(urls, url)
	}
	return urls
}
