// Package assets is the asset picker backend: it stores an uploaded image
// and hands back the URL the admin editor puts into the row.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	ErrNotConfigured   = errors.New("asset uploads are not configured")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// allowedImageTypes maps sniffed content types to object extensions. SVG is
// left out because it can carry script.
var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Picker interface {
	// Upload stores the image read from body and returns its public URL.
	Upload(ctx context.Context, name string, body io.Reader) (string, error)
}

// PutObjectAPI is the part of *s3.Client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Uploader struct {
	Client    PutObjectAPI
	Bucket    string
	Region    string
	Prefix    string
	PublicURL string
}

// NewS3 builds an uploader with the default AWS credential chain.
func NewS3(ctx context.Context, bucket, region, prefix, publicURL string) (*S3Uploader, error) {
	if bucket == "" {
		return nil, ErrNotConfigured
	}

	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Uploader{
		Client:    s3.NewFromConfig(cfg),
		Bucket:    bucket,
		Region:    cfg.Region,
		Prefix:    prefix,
		PublicURL: publicURL,
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, name string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	contentType := http.DetectContentType(data)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	key, err := u.objectKey(name, ext)
	if err != nil {
		return "", err
	}

	if _, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	}); err != nil {
		return "", fmt.Errorf("failed to upload %q: %w", key, err)
	}

	return u.objectURL(key), nil
}

func (u *S3Uploader) objectKey(name, ext string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate object name: %w", err)
	}

	base := strings.TrimSuffix(path.Base(strings.ReplaceAll(name, "\\", "/")), path.Ext(name))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, base)
	base = strings.Trim(base, "-")
	if base == "" || base == "." {
		base = "image"
	}
	if len(base) > 64 {
		base = base[:64]
	}

	return u.Prefix + id.String() + "-" + base + ext, nil
}

func (u *S3Uploader) objectURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if u.PublicURL != "" {
		return strings.TrimRight(u.PublicURL, "/") + "/" + escaped
	}
	if u.Region == "" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", u.Bucket, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.Bucket, u.Region, escaped)
}
