package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := NewLocalDisk(t.TempDir(), "http://localhost:8080/storage/")

	require.NoError(t, d.Put(ctx, "qr/g1.png", []byte("png"), "image/png"))

	ok, err := d.Exists(ctx, "qr/g1.png")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := d.Get(ctx, "qr/g1.png")
	require.NoError(t, err)
	assert.Equal(t, "png", string(got))
	assert.Equal(t, "http://localhost:8080/storage/qr/g1.png", d.URL("qr/g1.png"))

	require.NoError(t, d.Delete(ctx, "qr/g1.png"))
	require.NoError(t, d.Delete(ctx, "qr/g1.png"))
	_, err = d.Get(ctx, "qr/g1.png")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d := NewLocalDisk(root, "")

	// ".." is cleaned against the root, never above it.
	require.NoError(t, d.Put(ctx, "../../escape.txt", []byte("x"), ""))
	ok, err := d.Exists(ctx, "escape.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, _ := io.ReadAll(in.Body)
	f.objects[*in.Key] = b
	f.types[*in.Key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Disk(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	d := &S3Disk{client: fake, bucket: "b", baseURL: "https://cdn.example.com"}

	require.NoError(t, d.Put(ctx, "/invoices/o1.pdf", []byte("%PDF"), "application/pdf"))
	assert.Equal(t, "application/pdf", fake.types["invoices/o1.pdf"])

	ok, err := d.Exists(ctx, "invoices/o1.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = d.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotExist)

	ok, err = d.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, "https://cdn.example.com/invoices/o1.pdf", d.URL("invoices/o1.pdf"))
}

func TestManager(t *testing.T) {
	m := NewManager("local")
	_, err := m.Disk("local")
	assert.Error(t, err)

	m.Register("local", NewLocalDisk(t.TempDir(), ""))
	assert.NotNil(t, m.Default())
	assert.Equal(t, []string{"local"}, m.Names())
}
