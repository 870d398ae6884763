// Package s3 fetches s3://bucket/key addresses with the AWS SDK.
package s3

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/specialistvlad/spfrm/internal/ctxlog"
	"github.com/specialistvlad/spfrm/internal/handlers"
	"github.com/specialistvlad/spfrm/internal/request"
)

// Settings configures the S3 client.
type Settings struct {
	Region       string
	Endpoint     string
	UsePathStyle bool
	Anonymous    bool
}

// ObjectGetter is the subset of the S3 API the fetcher needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

// Fetcher downloads objects and discards their content.
type Fetcher struct {
	client ObjectGetter
}

// New creates a Fetcher with an S3 client built from settings. Credentials
// come from the standard AWS_* environment variables; without them, or when
// Anonymous is set, requests are unsigned.
func New(settings Settings) *Fetcher {
	region := settings.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	opts := awss3.Options{
		Region:       region,
		UsePathStyle: settings.UsePathStyle,
		Credentials:  credentials(settings.Anonymous),
	}
	if settings.Endpoint != "" {
		opts.BaseEndpoint = aws.String(settings.Endpoint)
	}
	return &Fetcher{client: awss3.New(opts)}
}

// NewWithClient creates a Fetcher around an existing client.
func NewWithClient(client ObjectGetter) *Fetcher {
	return &Fetcher{client: client}
}

func credentials(anonymous bool) aws.CredentialsProvider {
	key, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if anonymous || key == "" || secret == "" {
		return aws.AnonymousCredentials{}
	}
	creds := aws.Credentials{
		AccessKeyID:     key,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "EnvironmentVariables",
	}
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return creds, nil
	})
}

// ParseAddress splits an s3://bucket/key address.
func ParseAddress(address string) (bucket, key string, err error) {
	u, err := url.Parse(address)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 address '%s': %w", address, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("invalid s3 address '%s': scheme must be s3", address)
	}
	bucket, key = u.Host, strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 address '%s': bucket and key are required", address)
	}
	return bucket, key, nil
}

// Fetch implements loader.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, req request.Request) error {
	bucket, key, err := ParseAddress(req.Address)
	if err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx).With("bucket", bucket, "key", key)
	logger.Debug("Fetching S3 object.")

	out, err := f.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 get object failed: %w", err)
	}
	defer out.Body.Close()

	n, err := io.Copy(io.Discard, out.Body)
	if err != nil {
		return fmt.Errorf("failed to read s3 object body: %w", err)
	}
	logger.Debug("Fetched S3 object.", "bytes", n)
	return nil
}

// Module implements the handlers.Module interface.
type Module struct {
	Settings Settings
	Fetcher  *Fetcher
}

// Register registers the fetcher for the s3 scheme.
func (m *Module) Register(h *handlers.Handlers) {
	if m.Fetcher == nil {
		m.Fetcher = New(m.Settings)
	}
	h.RegisterFetcher("s3", m.Fetcher)
}
