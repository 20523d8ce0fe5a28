package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fnpsdn/netinv/internal/server/models"
	"github.com/fnpsdn/netinv/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/fnpsdn/netinv/internal/server/config"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// UploadTask is handed to a client that wants to push a configuration
// snapshot: PUT the content to URL, then call CompleteUpload with BackupID.
type UploadTask struct {
	BackupID string
	URL      string
}

// BackupService tracks device configuration snapshots. Content lives in
// S3-compatible object storage and moves over presigned URLs; only the
// metadata row is kept in Postgres.
type BackupService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewBackupService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *BackupService {
	return &BackupService{db: db, repomanager: m, config: cfg}
}

func storageKeyFor(deviceID string) string {
	d := time.Now()
	return fmt.Sprintf("devices/%s/%d/%d/%d/%v", deviceID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *BackupService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// RequestUpload creates a pending backup row and returns a presigned PUT
// URL for the snapshot content.
func (s *BackupService) RequestUpload(ctx context.Context, deviceID string) (*UploadTask, error) {
	if _, err := s.repomanager.Devices(s.db).GetByID(ctx, deviceID); err != nil {
		return nil, err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := storageKeyFor(deviceID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return nil, err
	}

	backup, err := s.repomanager.Backups(s.db).Create(ctx, &models.Backup{
		DeviceID:   deviceID,
		StorageKey: key,
		Status:     models.BackupPending,
		TakenAt:    time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating backup: %v", err)
	}

	return &UploadTask{BackupID: backup.ID, URL: req.URL}, nil
}

// CompleteUpload flips the backup to stored once the client confirms the
// PUT succeeded. A repeat confirmation is harmless.
func (s *BackupService) CompleteUpload(ctx context.Context, id string) error {
	_, err := s.repomanager.Backups(s.db).MarkStored(ctx, id)
	if err != nil {
		return fmt.Errorf("error updating backup: %v", err)
	}
	return nil
}

// DownloadURL returns a presigned GET URL for a stored snapshot.
func (s *BackupService) DownloadURL(ctx context.Context, id string) (string, error) {
	backup, err := s.repomanager.Backups(s.db).GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &backup.StorageKey,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// ListByDevice returns the snapshot history for a device, newest first.
func (s *BackupService) ListByDevice(ctx context.Context, deviceID string) ([]*models.Backup, error) {
	return s.repomanager.Backups(s.db).ListByDevice(ctx, deviceID)
}
