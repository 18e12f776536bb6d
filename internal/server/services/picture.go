package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dkarpovs/minifeed/internal/common"
	"github.com/dkarpovs/minifeed/internal/dbx"
	sc "github.com/dkarpovs/minifeed/internal/server/config"
	"github.com/dkarpovs/minifeed/internal/server/repositories/repomanager"
)

// Seams for testing the AWS SDK calls.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in, optFns...)
	}
)

// ProfilePictureService stores profile pictures in an S3-compatible bucket
// and persists the resulting object URL on the user row. The core only
// keeps the reference string; the object store owns the bytes.
type ProfilePictureService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewProfilePictureService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *ProfilePictureService {
	return &ProfilePictureService{db: db, repomanager: m, config: cfg}
}

func (s *ProfilePictureService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (s *ProfilePictureService) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s",
		strings.TrimSuffix(s.config.S3BaseEndpoint, "/"), s.config.S3Bucket, key)
}

// objectKey is the inverse of objectURL. Empty when the URL does not point
// into our bucket.
func (s *ProfilePictureService) objectKey(url string) string {
	prefix := fmt.Sprintf("%s/%s/",
		strings.TrimSuffix(s.config.S3BaseEndpoint, "/"), s.config.S3Bucket)
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

// Upload stores the picture under a fresh object key and swaps the user's
// stored reference. The read of the previous reference and the write of the
// new one run in one transaction, so two concurrent uploads cannot both see
// the same previous object. The replaced object, if any, is deleted from the
// bucket best-effort: a failed delete leaves an orphan, never a broken user.
// Returns the public object URL.
func (s *ProfilePictureService) Upload(ctx context.Context, userID int64, filename, contentType string, body io.Reader, size int64) (string, error) {

	client, err := s.getS3Client(ctx)
	if err != nil {
		return "", common.ErrorInternal
	}

	key := fmt.Sprintf("profile/%s%s", uuid.New(), filepath.Ext(filename))

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.S3Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", common.ErrorInternal
	}

	url := s.objectURL(key)

	var previous string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		prev, err := users.GetProfilePicture(ctx, userID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		previous = prev

		return users.SaveProfilePicture(ctx, userID, url)
	})
	if err != nil {
		if errors.Is(err, common.ErrUnknownUser) {
			return "", err
		}
		return "", common.ErrorInternal
	}

	if prevKey := s.objectKey(previous); prevKey != "" {
		_, _ = deleteObject(client, ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.config.S3Bucket),
			Key:    aws.String(prevKey),
		})
	}

	return url, nil
}

// PictureURL returns the stored reference for userID, or
// common.ErrorNotFound when the user has no picture.
func (s *ProfilePictureService) PictureURL(ctx context.Context, userID int64) (string, error) {
	url, err := s.repomanager.Users(s.db).GetProfilePicture(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", err
		}
		return "", common.ErrorInternal
	}
	return url, nil
}
