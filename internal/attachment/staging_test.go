package attachment

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"shopchat/internal/chatsession"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func sampleFiles(t *testing.T) []File {
	return []File{
		{Name: "a.png", MimeType: "image/png", Data: pngBytes(t, 4, 3)},
		{Name: "notes.txt", MimeType: "text/plain", Data: []byte("hi")},
		{Name: "b.png", MimeType: "image/png", Data: pngBytes(t, 2, 2)},
	}
}

func TestAdd_TwoImagesOneOther(t *testing.T) {
	s := NewStaging(nil)

	n, err := s.Add(sampleFiles(t)...)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 2, s.Pool().Live())

	items := s.Items()
	assert.Equal(t, KindImage, items[0].Kind)
	assert.Equal(t, KindOther, items[1].Kind)
	assert.Nil(t, items[1].Preview)
	require.NotNil(t, items[0].Preview)
	assert.Equal(t, 4, items[0].Preview.Width)
	assert.Equal(t, 3, items[0].Preview.Height)
	assert.Equal(t, "png", items[0].Preview.Format)
}

func TestRemoveAt_ReleasesExactlyOneHandle(t *testing.T) {
	s := NewStaging(nil)
	_, err := s.Add(sampleFiles(t)...)
	require.NoError(t, err)

	require.NoError(t, s.RemoveAt(0))
	assert.Equal(t, 1, s.Pool().Live())
	assert.Equal(t, 2, s.Len())

	// Removing the non-image releases nothing
	require.NoError(t, s.RemoveAt(0))
	assert.Equal(t, 1, s.Pool().Live())

	require.NoError(t, s.RemoveAt(0))
	assert.Zero(t, s.Pool().Live())
	assert.Zero(t, s.Len())
}

func TestRemoveAt_OutOfRange(t *testing.T) {
	s := NewStaging(nil)
	_, _ = s.Add(File{Name: "x.txt", MimeType: "text/plain"})

	for _, i := range []int{-1, 1, 5} {
		assert.ErrorIs(t, s.RemoveAt(i), ErrIndexOutOfRange)
	}
	assert.Equal(t, 1, s.Len())
}

func TestRemoveAt_ShiftsLightbox(t *testing.T) {
	tests := []struct {
		name      string
		open      int
		remove    int
		wantOpen  bool
		wantIndex int
		wantName  string
	}{
		{"remove before open item", 2, 0, true, 1, "b.png"},
		{"remove open item", 1, 1, false, -1, ""},
		{"remove after open item", 0, 2, true, 0, "a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStaging(nil)
			_, err := s.Add(sampleFiles(t)...)
			require.NoError(t, err)
			require.NoError(t, s.OpenLightbox(tt.open))

			require.NoError(t, s.RemoveAt(tt.remove))

			it, idx, ok := s.Lightbox()
			assert.Equal(t, tt.wantOpen, ok)
			assert.Equal(t, tt.wantIndex, idx)
			assert.Equal(t, tt.wantName, it.Name)
		})
	}
}

func TestClearAll_ReleasesEverything(t *testing.T) {
	s := NewStaging(nil)
	_, err := s.Add(sampleFiles(t)...)
	require.NoError(t, err)
	require.NoError(t, s.OpenLightbox(0))

	s.ClearAll()
	assert.Zero(t, s.Pool().Live())
	assert.Zero(t, s.Len())
	_, _, ok := s.Lightbox()
	assert.False(t, ok)

	// Second clear is harmless
	s.ClearAll()
	assert.Zero(t, s.Pool().Live())
}

func TestAdd_SkipsUnsupportedEntries(t *testing.T) {
	s := NewStaging(nil)

	n, err := s.Add(
		File{Name: "photos", Dir: true},
		File{Name: "", MimeType: "image/png"},
		File{Name: "ok.pdf", MimeType: "application/pdf"},
	)
	assert.Equal(t, 1, n)
	assert.True(t, errors.Is(err, ErrUnsupportedFile))
	assert.Equal(t, 1, s.Len())
	assert.Zero(t, s.Pool().Live())
}

func TestAdd_UndecodableImageStillGetsHandle(t *testing.T) {
	s := NewStaging(nil)

	n, err := s.Add(File{Name: "broken.png", MimeType: "image/png", Data: []byte("not a png")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, s.Pool().Live())
	assert.Empty(t, s.Items()[0].Preview.Format)
}

func TestAdd_RejectsOversizedImage(t *testing.T) {
	s := NewStaging(nil)

	n, err := s.Add(
		File{Name: "huge.png", MimeType: "image/png", Data: make([]byte, MaxPreviewBytes+1)},
		File{Name: "small.png", MimeType: "image/png", Data: pngBytes(t, 1, 1)},
	)
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, ErrUnsupportedFile)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, "small.png", s.Items()[0].Name)
	assert.Equal(t, 1, s.Pool().Live())
}

func TestPreviewPool_AcceptsImageAtLimit(t *testing.T) {
	p := NewPreviewPool()
	pv, err := p.Acquire(File{Name: "edge.png", Data: make([]byte, MaxPreviewBytes)})
	require.NoError(t, err)
	assert.Len(t, pv.Bytes, MaxPreviewBytes)
	assert.True(t, p.Release(pv))
}

func TestMetadata(t *testing.T) {
	s := NewStaging(nil)
	assert.Nil(t, s.Metadata())

	_, err := s.Add(sampleFiles(t)...)
	require.NoError(t, err)

	assert.Equal(t, []chatsession.AttachmentMeta{
		{Name: "a.png", MimeType: "image/png"},
		{Name: "notes.txt", MimeType: "text/plain"},
		{Name: "b.png", MimeType: "image/png"},
	}, s.Metadata())
}

func TestOpenLightbox(t *testing.T) {
	s := NewStaging(nil)
	assert.ErrorIs(t, s.OpenLightbox(0), ErrIndexOutOfRange)

	_, err := s.Add(sampleFiles(t)...)
	require.NoError(t, err)
	require.NoError(t, s.OpenLightbox(1))

	it, idx, ok := s.Lightbox()
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "notes.txt", it.Name)

	s.CloseLightbox()
	_, _, ok = s.Lightbox()
	assert.False(t, ok)
}

func TestPreviewPool_DoubleReleaseIsNoop(t *testing.T) {
	p := NewPreviewPool()
	pv, err := p.Acquire(File{Name: "a.png", Data: pngBytes(t, 1, 1)})
	require.NoError(t, err)

	assert.True(t, p.Release(pv))
	assert.False(t, p.Release(pv))
	assert.False(t, p.Release(nil))
	assert.Zero(t, p.Live())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	imgPath := filepath.Join(dir, "photo.PNG")
	require.NoError(t, os.WriteFile(imgPath, pngBytes(t, 2, 2), 0644))

	noExt := filepath.Join(dir, "README")
	require.NoError(t, os.WriteFile(noExt, []byte("plain words here"), 0644))

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0644))

	f, err := LoadFile(imgPath)
	require.NoError(t, err)
	assert.Equal(t, "photo.PNG", f.Name)
	assert.Equal(t, "image/png", f.MimeType)
	assert.Equal(t, KindImage, KindOf(f.MimeType))

	f, err = LoadFile(noExt)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", f.MimeType)

	f, err = LoadFile(txt)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", f.MimeType)

	f, err = LoadFile(dir)
	require.NoError(t, err)
	assert.True(t, f.Dir)

	_, err = LoadFile(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	// Path-backed files are read at preview time
	s := NewStaging(nil)
	f, err = LoadFile(imgPath)
	require.NoError(t, err)
	_, err = s.Add(f)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Items()[0].Preview.Width)
	s.ClearAll()
}
