package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	apperrors "github.com/kbukum/filekit/errors"
	"github.com/kbukum/filekit/filesystem"
	"github.com/kbukum/filekit/resilience"
)

// DriverName is the registry key of this driver.
const DriverName = "s3"

// NewFactory returns the DriverFactory for S3 disks.
func NewFactory() filesystem.DriverFactory {
	return func(disk string, opts filesystem.Options) (filesystem.Driver, error) {
		var cfg Config
		if err := opts.Decode(&cfg); err != nil {
			return nil, apperrors.InvalidConfig(disk, err.Error()).WithCause(err)
		}
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return New(context.Background(), disk, &cfg)
	}
}

// Driver implements filesystem.Driver on an S3 bucket.
type Driver struct {
	client  *awss3.Client
	presign *awss3.PresignClient
	bucket  string
	baseURL string
}

// compile-time check
var _ filesystem.Driver = (*Driver)(nil)

// New creates an S3 client from cfg.
func New(ctx context.Context, disk string, cfg *Config) (*Driver, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Key != "" && cfg.Secret != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, apperrors.InvalidConfig(disk, "load aws config").WithCause(err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
			// S3-compatible servers often reject the default CRC trailers.
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
			o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		}
		if cfg.ForcePathStyle {
			o.UsePathStyle = true
		}
	})

	return &Driver{
		client:  client,
		presign: awss3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.URL, "/"),
	}, nil
}

// Client returns the underlying S3 client.
func (d *Driver) Client() *awss3.Client { return d.client }

func key(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

func (d *Driver) head(ctx context.Context, p string) error {
	_, err := d.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key(p)),
	})
	return fromS3("head", p, err)
}

// Put uploads content with If-None-Match: *, so S3 rejects the write when
// the key already exists.
func (d *Driver) Put(ctx context.Context, p string, content []byte) error {
	return d.create(ctx, p, content)
}

func (d *Driver) create(ctx context.Context, p string, content []byte) error {
	in := &awss3.PutObjectInput{
		Bucket:        aws.String(d.bucket),
		Key:           aws.String(key(p)),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
		IfNoneMatch:   aws.String("*"),
	}
	if ct := mime.TypeByExtension(path.Ext(p)); ct != "" {
		in.ContentType = aws.String(ct)
	}
	_, err := d.client.PutObject(ctx, in)
	return fromS3("put", p, err)
}

func (d *Driver) PutFile(ctx context.Context, folder string, artifact filesystem.Artifact) (string, error) {
	content, err := filesystem.ReadArtifact(artifact)
	if err != nil {
		return "", apperrors.Internal(err)
	}

	target := key(path.Join(folder, artifact.Name()))
	return resilience.Retry(ctx, filesystem.CollisionRetry(), func() (string, error) {
		if err := d.create(ctx, target, content); err != nil {
			target = key(path.Join(folder, uuid.NewString()+artifact.Extension()))
			return "", err
		}
		return target, nil
	})
}

func (d *Driver) Exists(ctx context.Context, p string) (bool, error) {
	err := d.head(ctx, p)
	if err == nil {
		return true, nil
	}
	if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		return false, nil
	}
	return false, err
}

func (d *Driver) Missing(ctx context.Context, p string) (bool, error) {
	ok, err := d.Exists(ctx, p)
	return !ok, err
}

func (d *Driver) Get(ctx context.Context, p string) ([]byte, error) {
	out, err := d.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key(p)),
	})
	if err != nil {
		return nil, fromS3("get", p, err)
	}
	defer out.Body.Close() //nolint:errcheck // read side

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, apperrors.Backend("get", err)
	}
	return data, nil
}

// URL returns url/<key> when a public base is configured, otherwise a GET
// presigned for MaxPresignTTL.
func (d *Driver) URL(ctx context.Context, p string) (string, error) {
	if err := d.head(ctx, p); err != nil {
		return "", err
	}
	if d.baseURL != "" {
		return d.baseURL + (&url.URL{Path: "/" + key(p)}).EscapedPath(), nil
	}
	return d.presignGet(ctx, p, MaxPresignTTL)
}

// TemporaryURL presigns a GET for ttl, capped at MaxPresignTTL.
func (d *Driver) TemporaryURL(ctx context.Context, p string, ttl time.Duration) (string, error) {
	if err := d.head(ctx, p); err != nil {
		return "", err
	}
	ttl = filesystem.NormalizeTTL(ttl)
	if ttl > MaxPresignTTL {
		ttl = MaxPresignTTL
	}
	return d.presignGet(ctx, p, ttl)
}

func (d *Driver) presignGet(ctx context.Context, p string, ttl time.Duration) (string, error) {
	req, err := d.presign.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key(p)),
	}, awss3.WithPresignExpires(ttl))
	if err != nil {
		return "", apperrors.Backend("presign", err)
	}
	return req.URL, nil
}

// Delete removes p. S3 deletes are idempotent, so without force the object
// is checked first.
func (d *Driver) Delete(ctx context.Context, p string, force bool) error {
	if !force {
		if err := d.head(ctx, p); err != nil {
			return err
		}
	}
	_, err := d.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key(p)),
	})
	if err != nil && !isNotFound(err) {
		return fromS3("delete", p, err)
	}
	return nil
}

func (d *Driver) Copy(ctx context.Context, src, dst string) error {
	if err := d.head(ctx, src); err != nil {
		return err
	}
	source := (&url.URL{Path: d.bucket + "/" + key(src)}).EscapedPath()
	_, err := d.client.CopyObject(ctx, &awss3.CopyObjectInput{
		Bucket:     aws.String(d.bucket),
		Key:        aws.String(key(dst)),
		CopySource: aws.String(source),
	})
	return fromS3("copy", src, err)
}

// Move copies then deletes. If the delete fails both objects exist.
func (d *Driver) Move(ctx context.Context, src, dst string) error {
	if key(src) == key(dst) {
		return d.head(ctx, src)
	}
	if err := d.Copy(ctx, src, dst); err != nil {
		return err
	}
	if err := d.Delete(ctx, src, true); err != nil {
		return apperrors.Backend("move", fmt.Errorf("delete source: %w", err)).WithDetail("destination", dst)
	}
	return nil
}
