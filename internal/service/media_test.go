package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/internal/config"
	"socialnet/internal/model"
)

type mockPutter struct {
	putFn func(ctx context.Context, in *s3.PutObjectInput) error
	calls []*s3.PutObjectInput
	body  []byte
}

func (m *mockPutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.calls = append(m.calls, in)
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.body = body
	if m.putFn != nil {
		if err := m.putFn(ctx, in); err != nil {
			return nil, err
		}
	}
	return &s3.PutObjectOutput{}, nil
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMediaService_UploadImage(t *testing.T) {
	store := &mockPutter{}
	s := NewMediaServiceWithStore(store, "bucket", "https://cdn.example.com/")
	data := pngImage(t, 2160, 1080)

	res, err := s.UploadImage(context.Background(), bytes.NewReader(data), int64(len(data)), "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Key, model.ImageFolder+"/"))
	assert.True(t, strings.HasSuffix(res.Key, model.ImageExt))
	assert.Equal(t, "https://cdn.example.com/"+res.Key, res.URL)

	require.Len(t, store.calls, 1)
	in := store.calls[0]
	assert.Equal(t, "bucket", aws.ToString(in.Bucket))
	assert.Equal(t, res.Key, aws.ToString(in.Key))
	assert.Equal(t, model.ContentTypeJPEG, aws.ToString(in.ContentType))

	cfg, format, err := image.DecodeConfig(bytes.NewReader(store.body))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1080, cfg.Width, "longest edge fits the limit")
	assert.Equal(t, 540, cfg.Height, "aspect ratio kept")
}

func TestMediaService_SmallImageKeepsSize(t *testing.T) {
	store := &mockPutter{}
	s := NewMediaServiceWithStore(store, "bucket", "https://cdn.example.com")
	data := pngImage(t, 40, 30)

	_, err := s.UploadImage(context.Background(), bytes.NewReader(data), int64(len(data)), "image/png; charset=binary")
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(store.body))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
	assert.Equal(t, 30, cfg.Height)
}

func TestMediaService_Rejections(t *testing.T) {
	store := &mockPutter{}
	s := NewMediaServiceWithStore(store, "bucket", "https://cdn.example.com")
	ctx := context.Background()

	_, err := s.UploadImage(ctx, strings.NewReader("x"), model.MaxImageSizeBytes+1, "image/png")
	assert.ErrorIs(t, err, model.ErrFileTooLarge)

	_, err = s.UploadImage(ctx, strings.NewReader("plain text, not a picture"), 25, "")
	assert.ErrorIs(t, err, model.ErrInvalidImageType)

	_, err = s.UploadImage(ctx, strings.NewReader("not really a png"), 16, "image/png")
	assert.ErrorIs(t, err, model.ErrInvalidImageType, "undecodable data is rejected")

	assert.Empty(t, store.calls)

	store.putFn = func(context.Context, *s3.PutObjectInput) error { return errors.New("boom") }
	data := pngImage(t, 10, 10)
	_, err = s.UploadImage(ctx, bytes.NewReader(data), int64(len(data)), "")
	assert.ErrorContains(t, err, "boom")
}

func TestNewMediaService_RequiresConfig(t *testing.T) {
	_, err := NewMediaService(context.Background(), &config.Config{R2BucketName: "b"})
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
}
