package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/campuschat-server/internal/model"
)

// fakeObjects is an in-memory objectAPI.
type fakeObjects struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error
	madeBucket      string

	objects map[string][]byte
	putErr  error
	getErr  error
	rmErr   error
	statErr error

	lastContentType string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{bucketExists: true, objects: make(map[string][]byte)}
}

var noSuchKey = minioLib.ErrorResponse{Code: "NoSuchKey"}

func (f *fakeObjects) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}

func (f *fakeObjects) MakeBucket(_ context.Context, bucket string, _ minioLib.MakeBucketOptions) error {
	if f.makeBucketErr != nil {
		return f.makeBucketErr
	}
	f.madeBucket = bucket
	return nil
}

func (f *fakeObjects) PutObject(_ context.Context, _ string, key string, r io.Reader, _ int64, opts minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	if f.putErr != nil {
		return minioLib.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minioLib.UploadInfo{}, err
	}
	f.objects[key] = data
	f.lastContentType = opts.ContentType
	return minioLib.UploadInfo{Key: key, Size: int64(len(data))}, nil
}

func (f *fakeObjects) GetObject(_ context.Context, _ string, key string, _ minioLib.GetObjectOptions) (io.ReadCloser, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, noSuchKey
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeObjects) RemoveObject(_ context.Context, _ string, key string, _ minioLib.RemoveObjectOptions) error {
	if f.rmErr != nil {
		return f.rmErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeObjects) StatObject(_ context.Context, _ string, key string, _ minioLib.StatObjectOptions) (minioLib.ObjectInfo, error) {
	if f.statErr != nil {
		return minioLib.ObjectInfo{}, f.statErr
	}
	if _, ok := f.objects[key]; !ok {
		return minioLib.ObjectInfo{}, noSuchKey
	}
	return minioLib.ObjectInfo{Key: key}, nil
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	t.Run("bucket exists", func(t *testing.T) {
		api := newFakeObjects()
		c, err := newClient(ctx, api, "messages")
		require.NoError(t, err)
		assert.Equal(t, "messages", c.bucket)
		assert.Empty(t, api.madeBucket)
	})

	t.Run("creates bucket", func(t *testing.T) {
		api := newFakeObjects()
		api.bucketExists = false
		_, err := newClient(ctx, api, "messages")
		require.NoError(t, err)
		assert.Equal(t, "messages", api.madeBucket)
	})

	t.Run("check fails", func(t *testing.T) {
		api := newFakeObjects()
		api.bucketExistsErr = errors.New("boom")
		c, err := newClient(ctx, api, "messages")
		assert.Nil(t, c)
		assert.ErrorContains(t, err, "failed to ensure bucket exists")
	})

	t.Run("create fails", func(t *testing.T) {
		api := newFakeObjects()
		api.bucketExists = false
		api.makeBucketErr = errors.New("fail")
		c, err := newClient(ctx, api, "messages")
		assert.Nil(t, c)
		assert.ErrorContains(t, err, "failed to create bucket")
	})
}

func TestClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	api := newFakeObjects()
	c, err := newClient(ctx, api, "messages")
	require.NoError(t, err)

	require.NoError(t, c.Upload(ctx, "conversation-x/message-y", bytes.NewReader([]byte("body"))))
	assert.Equal(t, bodyContentType, api.lastContentType)

	ok, err := c.Exists(ctx, "conversation-x/message-y")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := c.Download(ctx, "conversation-x/message-y")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "body", string(data))

	require.NoError(t, c.Delete(ctx, "conversation-x/message-y"))
	require.NoError(t, c.Delete(ctx, "conversation-x/message-y"))

	ok, err = c.Exists(ctx, "conversation-x/message-y")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Download(ctx, "conversation-x/message-y")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()
	api := newFakeObjects()
	c := &Client{api: api, bucket: "messages"}

	api.putErr = errors.New("put-fail")
	assert.ErrorContains(t, c.Upload(ctx, "k", bytes.NewReader(nil)), "failed to upload object")

	api.getErr = errors.New("get-fail")
	rc, err := c.Download(ctx, "k")
	assert.Nil(t, rc)
	assert.ErrorContains(t, err, "failed to get object")

	api.rmErr = errors.New("remove-fail")
	assert.ErrorContains(t, c.Delete(ctx, "k"), "failed to delete object")

	api.statErr = errors.New("stat-fail")
	ok, err := c.Exists(ctx, "k")
	assert.False(t, ok)
	assert.ErrorContains(t, err, "failed to stat object")
}
