package marketdata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3Config locates a CSV price feed in an S3-compatible bucket.
type S3Config struct {
	Bucket    string
	Key       string
	Endpoint  string // Custom endpoint (R2, MinIO); empty uses AWS
	Region    string
	AccessKey string
	SecretKey string
}

// objectDownloader is the part of manager.Downloader the source uses.
type objectDownloader interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader)) (int64, error)
}

// S3Source serves prices from a CSV object (same format as ParseCSV).
type S3Source struct {
	bucket     string
	key        string
	downloader objectDownloader
	log        zerolog.Logger
}

// NewS3Source builds an S3 client for cfg. Static credentials are used when
// provided, otherwise the default AWS credential chain applies.
func NewS3Source(ctx context.Context, cfg S3Config, log zerolog.Logger) (*S3Source, error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		return nil, fmt.Errorf("price feed bucket and key are required")
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Source(cfg.Bucket, cfg.Key, manager.NewDownloader(client), log), nil
}

func newS3Source(bucket, key string, downloader objectDownloader, log zerolog.Logger) *S3Source {
	return &S3Source{
		bucket:     bucket,
		key:        key,
		downloader: downloader,
		log:        log.With().Str("component", "s3_source").Logger(),
	}
}

// Name identifies the feed in sync records.
func (s *S3Source) Name() string {
	return "s3://" + s.bucket + "/" + s.key
}

// Fetch downloads and parses the whole price object.
func (s *S3Source) Fetch(ctx context.Context) (*PriceTable, error) {
	start := time.Now()

	buf := manager.NewWriteAtBuffer(nil)
	n, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", s.Name(), err)
	}

	table, err := ParseCSV(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.Name(), err)
	}

	s.log.Debug().
		Int64("bytes", n).
		Int("rows", table.Len()).
		Int("symbols", len(table.Symbols)).
		Dur("duration", time.Since(start)).
		Msg("Fetched price feed")
	return table, nil
}

// LoadPrices implements Source.
func (s *S3Source) LoadPrices(ctx context.Context, symbols []string, from, to time.Time) (*PriceTable, error) {
	table, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return selectWindow(table, symbols, from, to)
}
