// Package attachment stages files selected for the next chat message and
// manages the preview handles of staged images.
package attachment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFile marks a selection entry that cannot be staged
	// (a directory, an entry without a name, or an image too large to preview).
	ErrUnsupportedFile = errors.New("unsupported file")

	// ErrIndexOutOfRange is returned for a staging index that does not exist.
	ErrIndexOutOfRange = errors.New("attachment index out of range")
)

// Kind is decided once at staging time and never re-inspected.
type Kind int

const (
	KindOther Kind = iota
	KindImage
)

func (k Kind) String() string {
	if k == KindImage {
		return "image"
	}
	return "other"
}

// KindOf classifies a MIME type: image/* is an image, everything else is not.
func KindOf(mimeType string) Kind {
	if strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return KindImage
	}
	return KindOther
}

// File is one entry of a raw file selection. Data may be empty when Path
// points at the bytes on disk.
type File struct {
	Name     string
	MimeType string
	Path     string
	Data     []byte
	Dir      bool
}

// Open returns a reader over the file's bytes.
func (f File) Open() (io.ReadCloser, error) {
	if f.Data != nil || f.Path == "" {
		return io.NopCloser(bytes.NewReader(f.Data)), nil
	}
	return os.Open(f.Path)
}

// LoadFile builds a File from disk. The MIME type comes from the extension,
// falling back to sniffing the first 512 bytes. Directories come back with
// Dir set so Add can report them.
func LoadFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f := File{Name: filepath.Base(path), Path: path}
	if info.IsDir() {
		f.Dir = true
		return f, nil
	}

	f.MimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if f.MimeType == "" {
		f.MimeType, err = sniff(path)
		if err != nil {
			return File{}, err
		}
	}
	if i := strings.Index(f.MimeType, ";"); i >= 0 {
		f.MimeType = strings.TrimSpace(f.MimeType[:i])
	}
	return f, nil
}

func sniff(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fh.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(fh, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return http.DetectContentType(buf[:n]), nil
}
