package assets

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, f.err
}

// smallest valid PNG header is enough for content sniffing
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadPNG(t *testing.T) {
	client := &fakeS3{}
	u := &S3Uploader{Client: client, Bucket: "media", Region: "eu-west-1", Prefix: "uploads/"}

	url, err := u.Upload(context.Background(), "My Photo.PNG", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	key := aws.ToString(client.input.Key)
	assert.True(t, strings.HasPrefix(key, "uploads/"), key)
	assert.True(t, strings.HasSuffix(key, "-my-photo.png"), key)
	assert.Equal(t, "media", aws.ToString(client.input.Bucket))
	assert.Equal(t, "image/png", aws.ToString(client.input.ContentType))
	assert.Equal(t, int64(len(pngHeader)), aws.ToInt64(client.input.ContentLength))
	assert.Equal(t, pngHeader, client.body)
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/"+key, url)
}

func TestUploadPublicURL(t *testing.T) {
	client := &fakeS3{}
	u := &S3Uploader{Client: client, Bucket: "media", PublicURL: "https://cdn.example.com/"}

	url, err := u.Upload(context.Background(), "", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/"), url)
	assert.True(t, strings.HasSuffix(url, "-image.png"), url)
}

func TestUploadRejectsNonImages(t *testing.T) {
	client := &fakeS3{}
	u := &S3Uploader{Client: client, Bucket: "media"}

	for _, body := range []string{
		"<svg xmlns=\"http://www.w3.org/2000/svg\"><script>alert(1)</script></svg>",
		"<html><body>hi</body></html>",
		"plain text",
	} {
		_, err := u.Upload(context.Background(), "x.png", strings.NewReader(body))
		assert.ErrorIs(t, err, ErrUnsupportedType, body)
	}
	assert.Nil(t, client.input, "nothing should be uploaded")
}

func TestUploadClientError(t *testing.T) {
	boom := errors.New("access denied")
	u := &S3Uploader{Client: &fakeS3{err: boom}, Bucket: "media"}

	_, err := u.Upload(context.Background(), "a.png", bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, boom)
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), "", "us-east-1", "", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestObjectURLWithoutRegion(t *testing.T) {
	u := &S3Uploader{Bucket: "media"}
	assert.Equal(t, "https://media.s3.amazonaws.com/uploads/a%20b.png", u.objectURL("uploads/a b.png"))
}
