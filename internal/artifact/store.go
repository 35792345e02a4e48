package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Store persists an encoded artifact at a location.
type Store interface {
	Write(ctx context.Context, location string, data io.Reader) error
}

// Local writes artifacts to the local filesystem. The file is written next to
// its destination and renamed into place, so readers never see a partial
// artifact.
type Local struct{}

// Write implements Store.
func (Local) Write(ctx context.Context, location string, data io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
		return fmt.Errorf("creating directories: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(location), "."+filepath.Base(location)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", location, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", location, err)
	}
	return os.Rename(tmp.Name(), location)
}

// putter is the slice of the S3 client used by S3.
type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures the S3 store. Empty keys fall back to anonymous
// credentials; Endpoint targets S3-compatible servers such as MinIO.
type S3Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// S3 writes artifacts to locations of the form s3://bucket/key.
type S3 struct {
	client putter
}

// NewS3 builds an S3 store from cfg.
func NewS3(cfg S3Config) *S3 {
	var creds aws.CredentialsProvider = aws.AnonymousCredentials{}
	if cfg.AccessKeyID != "" {
		creds = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  creds,
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return &S3{client: s3.New(opts)}
}

// Write implements Store.
func (s *S3) Write(ctx context.Context, location string, data io.Reader) error {
	bucket, key, err := SplitS3(location)
	if err != nil {
		return err
	}
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, data); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("putting object: %w", err)
	}
	return nil
}

// SplitS3 splits s3://bucket/key into its parts.
func SplitS3(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		return "", "", fmt.Errorf("artifact: %q is not an s3:// location", location)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("artifact: %q needs both bucket and key", location)
	}
	return bucket, key, nil
}

// Router dispatches s3:// locations to S3 and everything else to Local.
type Router struct {
	Local Store
	S3    Store
}

// Write implements Store.
func (r Router) Write(ctx context.Context, location string, data io.Reader) error {
	if strings.HasPrefix(location, "s3://") {
		if r.S3 == nil {
			return fmt.Errorf("artifact: no S3 store configured for %s", location)
		}
		return r.S3.Write(ctx, location, data)
	}
	local := r.Local
	if local == nil {
		local = Local{}
	}
	return local.Write(ctx, location, data)
}
