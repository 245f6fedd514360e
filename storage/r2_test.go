package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectAPI struct {
	putKey  string
	putBody string
	putType string
	deleted []string
	err     error
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(params.Body)
	f.putKey = aws.ToString(params.Key)
	f.putType = aws.ToString(params.ContentType)
	f.putBody = string(body)
	return &s3.PutObjectOutput{ETag: aws.String(`"abc123"`)}, nil
}

func (f *fakeObjectAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, f.err
}

func testUploader(t *testing.T, api objectAPI) *cloudflareR2Uploader {
	base, err := url.Parse("https://files.example.com/public/")
	require.NoError(t, err)
	return newR2Uploader(api, "reports", base)
}

func TestR2UploadReport(t *testing.T) {
	api := &fakeObjectAPI{}
	u := testUploader(t, api)

	res, err := u.Upload(context.Background(), ReportKey(12), "application/json", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, err)

	assert.Equal(t, "reports/tournament-12.json", api.putKey)
	assert.Equal(t, "application/json", api.putType)
	assert.Equal(t, `{"name":"x"}`, api.putBody)
	assert.Equal(t, "abc123", res.ETag)
	assert.Equal(t, "https://files.example.com/public/reports/tournament-12.json", res.Location)
}

func TestR2UploadError(t *testing.T) {
	u := testUploader(t, &fakeObjectAPI{err: errors.New("denied")})

	_, err := u.Upload(context.Background(), "k", "application/json", strings.NewReader("{}"))
	assert.ErrorContains(t, err, "denied")
}

func TestR2Delete(t *testing.T) {
	api := &fakeObjectAPI{}
	require.NoError(t, testUploader(t, api).Delete(context.Background(), "reports/tournament-1.json"))
	assert.Equal(t, []string{"reports/tournament-1.json"}, api.deleted)
}

func TestGetPublicURL(t *testing.T) {
	u := testUploader(t, &fakeObjectAPI{})
	assert.Equal(t, "https://files.example.com/public/a/b.json", u.GetPublicURL("/a/b.json"))
	assert.Empty(t, u.GetPublicURL(""))
}

func TestNewCloudflareR2UploaderRequiresConfig(t *testing.T) {
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{AccountID: "acc"})
	assert.ErrorIs(t, err, ErrInvalidR2Config)
}
