package attachment

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"sync"

	"shopchat/internal/logging"

	"github.com/google/uuid"
)

// MaxPreviewBytes is the largest image a preview will hold. Bigger files are
// rejected rather than cut short.
const MaxPreviewBytes = 16 << 20

// Preview is a handle to displayable image bytes, separate from the raw file.
// Every acquired preview must be released exactly once through its pool.
type Preview struct {
	ID     string
	Bytes  []byte
	Width  int
	Height int
	Format string // png, jpeg, gif; empty when the header could not be decoded
}

// PreviewPool hands out preview handles and tracks which are still live.
type PreviewPool struct {
	mu   sync.Mutex
	live map[string]*Preview
}

// NewPreviewPool creates an empty pool.
func NewPreviewPool() *PreviewPool {
	return &PreviewPool{live: make(map[string]*Preview)}
}

// Acquire reads f and returns a live preview. Undecodable image data still
// yields a handle, only without dimensions.
func (p *PreviewPool) Acquire(f File) (*Preview, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxPreviewBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	if len(data) > MaxPreviewBytes {
		return nil, fmt.Errorf("%w: %q exceeds %d bytes", ErrUnsupportedFile, f.Name, MaxPreviewBytes)
	}

	pv := &Preview{ID: uuid.NewString(), Bytes: data}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		pv.Width, pv.Height, pv.Format = cfg.Width, cfg.Height, format
	} else {
		logging.AttachmentsDebug("No image header for %s: %v", f.Name, err)
	}

	p.mu.Lock()
	p.live[pv.ID] = pv
	n := len(p.live)
	p.mu.Unlock()

	logging.AttachmentsDebug("Acquired preview %s for %s (%d live)", pv.ID, f.Name, n)
	return pv, nil
}

// Release frees a preview. It reports false for nil or already-released handles.
func (p *PreviewPool) Release(pv *Preview) bool {
	if pv == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.live[pv.ID]; !ok {
		logging.AttachmentsWarn("Release of unknown preview %s", pv.ID)
		return false
	}
	delete(p.live, pv.ID)
	pv.Bytes = nil
	return true
}

// Live returns the number of previews acquired and not yet released.
func (p *PreviewPool) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}
