package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"captionforge/internal/config"
)

// S3API is the subset of the S3 client used by the uploader.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Uploader writes artifacts to an S3-compatible bucket.
type S3Uploader struct {
	client        S3API
	bucket        string
	prefix        string
	region        string
	endpoint      string
	pathStyle     bool
	publicBaseURL string
}

// NewS3Uploader loads AWS credentials and builds an S3 client for cfg.
func NewS3Uploader(ctx context.Context, cfg config.Storage) (*S3Uploader, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, storageError("s3", "bucket not configured", nil)
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.Region)
	if err != nil {
		return nil, storageError("s3", "load aws config", err)
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return NewS3UploaderWithClient(client, cfg), nil
}

// NewS3UploaderWithClient wraps an existing client.
func NewS3UploaderWithClient(client S3API, cfg config.Storage) *S3Uploader {
	return &S3Uploader{
		client:        client,
		bucket:        strings.TrimSpace(cfg.Bucket),
		prefix:        cfg.Prefix,
		region:        strings.TrimSpace(cfg.Region),
		endpoint:      strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		pathStyle:     cfg.PathStyle,
		publicBaseURL: strings.TrimSpace(cfg.PublicBaseURL),
	}
}

// Bucket returns the configured bucket name.
func (u *S3Uploader) Bucket() string {
	return u.bucket
}

// Check verifies the bucket exists and the credentials can reach it.
func (u *S3Uploader) Check(ctx context.Context) error {
	if _, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(u.bucket)}); err != nil {
		return storageError("s3", fmt.Sprintf("head bucket %s", u.bucket), err)
	}
	return nil
}

// Upload puts localPath under the configured prefix.
func (u *S3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", storageError("s3", "open artifact", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return "", storageError("s3", "stat artifact", err)
	}

	key := objectKey(u.prefix, localPath)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
	}
	if contentType := contentTypeFor(localPath); contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", storageError("s3", fmt.Sprintf("put s3://%s/%s", u.bucket, key), err)
	}
	return u.objectURL(key), nil
}

var videoContentTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
}

func contentTypeFor(localPath string) string {
	ext := strings.ToLower(filepath.Ext(localPath))
	if ct, ok := videoContentTypes[ext]; ok {
		return ct
	}
	return mime.TypeByExtension(ext)
}

func (u *S3Uploader) objectURL(key string) string {
	switch {
	case u.publicBaseURL != "":
		return publicURL(u.publicBaseURL, key)
	case u.endpoint != "" && u.pathStyle:
		return publicURL(u.endpoint+"/"+u.bucket, key)
	case u.endpoint != "":
		return publicURL(u.endpoint, key)
	default:
		region := u.region
		if region == "" {
			region = "us-east-1"
		}
		return publicURL(fmt.Sprintf("https://%s.s3.%s.amazonaws.com", u.bucket, region), key)
	}
}

// loadAWSConfig prefers static keys from the environment, then a named
// profile, then the SDK default chain (instance roles, SSO).
func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		region = strings.TrimSpace(os.Getenv("AWS_REGION"))
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	accessKeyID := strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID"))
	secretAccessKey := strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY"))
	profile := strings.TrimSpace(os.Getenv("AWS_PROFILE"))

	switch {
	case accessKeyID != "" || secretAccessKey != "":
		if accessKeyID == "" || secretAccessKey == "" {
			return aws.Config{}, errors.New("both AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are required when using key-based auth")
		}
		sessionToken := strings.TrimSpace(os.Getenv("AWS_SESSION_TOKEN"))
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, sessionToken),
		))
	case profile != "":
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(profile))
	}

	return awsconfig.LoadDefaultConfig(ctx, loadOpts...)
}
