package source

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/rs/zerolog"

	"supplychain-analytics/internal/model"
)

// S3Config carries the bucket location and the two object keys holding the
// CSV exports.
type S3Config struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	LogisticsKey string
	InventoryKey string
}

// S3Source reads the CSV exports from an S3 bucket, for deployments where
// the warehouse drops its files into object storage instead of local disk.
type S3Source struct {
	client *s3.S3
	cfg    S3Config
	log    zerolog.Logger
}

func NewS3Source(cfg S3Config, log zerolog.Logger) *S3Source {
	awsConfig := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}
	sess := session.Must(session.NewSession(awsConfig))

	return &S3Source{
		client: s3.New(sess),
		cfg:    cfg,
		log:    log.With().Str("source", "s3").Logger(),
	}
}

func (s *S3Source) Logistics(ctx context.Context) ([]model.LogisticsRecord, int, error) {
	var records []model.LogisticsRecord
	dropped, err := s.readObject(ctx, s.cfg.LogisticsKey, func(r rowReader) error {
		rec, err := decodeLogisticsRow(r)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return records, dropped, nil
}

func (s *S3Source) Inventory(ctx context.Context) ([]model.InventoryRecord, int, error) {
	var records []model.InventoryRecord
	dropped, err := s.readObject(ctx, s.cfg.InventoryKey, func(r rowReader) error {
		rec, err := decodeInventoryRow(r)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return records, dropped, nil
}

// Version is the newest LastModified of the two objects.
func (s *S3Source) Version(ctx context.Context) (string, error) {
	var latest int64
	for _, key := range []string{s.cfg.LogisticsKey, s.cfg.InventoryKey} {
		head, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.cfg.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return "", fmt.Errorf("%w: head s3://%s/%s: %v", ErrSourceUnavailable, s.cfg.Bucket, key, err)
		}
		if head.LastModified != nil {
			if mtime := head.LastModified.UnixNano(); mtime > latest {
				latest = mtime
			}
		}
	}
	return strconv.FormatInt(latest, 10), nil
}

func (s *S3Source) readObject(ctx context.Context, key string, decode func(rowReader) error) (int, error) {
	resp, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: get s3://%s/%s: %v", ErrSourceUnavailable, s.cfg.Bucket, key, err)
	}
	defer resp.Body.Close()
	return readCSV(ctx, resp.Body, key, s.log, decode)
}
