package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	params    uploader.UploadParams
	body      string
	uploadRes *uploader.UploadResult
	destroy   *uploader.DestroyResult
	err       error
}

func (f *fakeUploader) Upload(_ context.Context, file interface{}, p uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = p
	if r, ok := file.(io.Reader); ok {
		b, _ := io.ReadAll(r)
		f.body = string(b)
	}
	return f.uploadRes, f.err
}

func (f *fakeUploader) Destroy(_ context.Context, _ uploader.DestroyParams) (*uploader.DestroyResult, error) {
	return f.destroy, f.err
}

func TestUpload(t *testing.T) {
	t.Parallel()
	fu := &fakeUploader{uploadRes: &uploader.UploadResult{SecureURL: "https://cdn/x.png", PublicID: "shop/x"}}
	s := &CloudinaryStore{up: fu, folder: "shop"}

	f, err := s.Upload(context.Background(), "x.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, File{URL: "https://cdn/x.png", PublicID: "shop/x"}, f)
	assert.Equal(t, "shop", fu.params.Folder)
	assert.Equal(t, "png-bytes", fu.body)
	assert.True(t, strings.HasPrefix(fu.params.PublicID, "x-"))
}

func TestPublicID(t *testing.T) {
	t.Parallel()
	assert.Regexp(t, `^summer-hat-[0-9a-f]{8}$`, publicID("../summer hat.jpg"))
	assert.Regexp(t, `^file-[0-9a-f]{8}$`, publicID(""))
	assert.NotEqual(t, publicID("a.png"), publicID("a.png"))
}

func TestUploadErrors(t *testing.T) {
	t.Parallel()
	s := &CloudinaryStore{up: &fakeUploader{err: errors.New("timeout")}}
	_, err := s.Upload(context.Background(), "x", strings.NewReader(""))
	require.Error(t, err)

	res := &uploader.UploadResult{}
	res.Error.Message = "Invalid image file"
	s = &CloudinaryStore{up: &fakeUploader{uploadRes: res}}
	_, err = s.Upload(context.Background(), "x", strings.NewReader(""))
	require.ErrorContains(t, err, "Invalid image file")
}

func TestDelete(t *testing.T) {
	t.Parallel()
	s := &CloudinaryStore{up: &fakeUploader{destroy: &uploader.DestroyResult{Result: "ok"}}}
	require.NoError(t, s.Delete(context.Background(), "shop/x"))

	s = &CloudinaryStore{up: &fakeUploader{destroy: &uploader.DestroyResult{Result: "not found"}}}
	require.ErrorIs(t, s.Delete(context.Background(), "shop/y"), ErrNotFound)
}
