package attachment

import (
	"errors"
	"fmt"
	"sync"

	"shopchat/internal/chatsession"
	"shopchat/internal/logging"
)

// Item is one staged attachment. Preview is set only for KindImage.
type Item struct {
	Name     string
	MimeType string
	Kind     Kind
	File     File
	Preview  *Preview
}

// Meta returns the name/type record sent with the message.
func (it Item) Meta() chatsession.AttachmentMeta {
	return chatsession.AttachmentMeta{Name: it.Name, MimeType: it.MimeType}
}

// Staging holds the attachments for the next message, in selection order,
// plus which one (if any) is open in the lightbox.
type Staging struct {
	mu       sync.Mutex
	pool     *PreviewPool
	items    []Item
	lightbox int
}

// NewStaging creates an empty staging area. A nil pool gets a private one.
func NewStaging(pool *PreviewPool) *Staging {
	if pool == nil {
		pool = NewPreviewPool()
	}
	return &Staging{pool: pool, lightbox: -1}
}

// Pool returns the preview pool backing this staging area.
func (s *Staging) Pool() *PreviewPool {
	return s.pool
}

// Add stages each file in order. Unsupported entries are skipped and reported
// in the joined error; the rest are still staged. Returns how many were staged.
func (s *Staging) Add(files ...File) (int, error) {
	var errs []error
	staged := make([]Item, 0, len(files))

	for _, f := range files {
		if f.Dir || f.Name == "" {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnsupportedFile, f.Name))
			continue
		}

		it := Item{Name: f.Name, MimeType: f.MimeType, Kind: KindOf(f.MimeType), File: f}
		if it.Kind == KindImage {
			pv, err := s.pool.Acquire(f)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			it.Preview = pv
		}
		staged = append(staged, it)
	}

	s.mu.Lock()
	s.items = append(s.items, staged...)
	total := len(s.items)
	s.mu.Unlock()

	logging.Attachments("Staged %d of %d files (%d total)", len(staged), len(files), total)
	return len(staged), errors.Join(errs...)
}

// RemoveAt releases and removes the item at i. An open lightbox on i closes;
// one on a later index follows its item down by one.
func (s *Staging) RemoveAt(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(s.items))
	}

	s.pool.Release(s.items[i].Preview)
	s.items = append(s.items[:i], s.items[i+1:]...)

	switch {
	case s.lightbox == i:
		s.lightbox = -1
	case s.lightbox > i:
		s.lightbox--
	}
	return nil
}

// ClearAll releases every preview, empties the list and closes the lightbox.
func (s *Staging) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range s.items {
		s.pool.Release(it.Preview)
	}
	if len(s.items) > 0 {
		logging.AttachmentsDebug("Cleared %d staged attachments", len(s.items))
	}
	s.items = nil
	s.lightbox = -1
}

// OpenLightbox shows item i full size.
func (s *Staging) OpenLightbox(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(s.items))
	}
	s.lightbox = i
	return nil
}

// CloseLightbox hides the lightbox.
func (s *Staging) CloseLightbox() {
	s.mu.Lock()
	s.lightbox = -1
	s.mu.Unlock()
}

// Lightbox returns the item shown in the lightbox, if open.
func (s *Staging) Lightbox() (Item, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lightbox < 0 {
		return Item{}, -1, false
	}
	return s.items[s.lightbox], s.lightbox, true
}

// Items returns a copy of the staged items.
func (s *Staging) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

// Len returns the number of staged items.
func (s *Staging) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Metadata returns the name/type records of all staged items.
func (s *Staging) Metadata() []chatsession.AttachmentMeta {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return nil
	}
	out := make([]chatsession.AttachmentMeta, len(s.items))
	for i, it := range s.items {
		out[i] = it.Meta()
	}
	return out
}
