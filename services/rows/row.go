// Package rows holds the horizontally scrollable content rows and each
// visitor's position within them.
package rows

import (
	"errors"
	"strings"
	"sync"

	"marquee/models"
)

// ErrUnknownDirection is returned when a direction is neither next nor prev.
var ErrUnknownDirection = errors.New("unknown row direction")

// Direction moves a row window forwards or backwards by one page.
type Direction string

const (
	Next Direction = "next"
	Prev Direction = "prev"
)

// ParseDirection accepts next/prev and the arrow aliases right/left.
func ParseDirection(value string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "next", "right":
		return Next, nil
	case "prev", "previous", "left":
		return Prev, nil
	default:
		return "", ErrUnknownDirection
	}
}

// Row is a fixed list of items with a sliding window of visibleCount items.
// Navigating moves the window by a full page and clamps at both ends.
type Row struct {
	mu           sync.RWMutex
	items        []models.CatalogItem
	visibleCount int
	offset       int
}

// New creates a row positioned at its first page. visibleCount below 1 is
// treated as 1.
func New(items []models.CatalogItem, visibleCount int) *Row {
	if visibleCount < 1 {
		visibleCount = 1
	}
	return &Row{
		items:        append([]models.CatalogItem(nil), items...),
		visibleCount: visibleCount,
	}
}

// Len returns the number of items in the row.
func (r *Row) Len() int {
	return len(r.items)
}

// Offset returns the index of the first visible item.
func (r *Row) Offset() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.offset
}

// Window returns min(visibleCount, len) contiguous items from the offset.
func (r *Row) Window() []models.CatalogItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.windowLocked()
}

func (r *Row) windowLocked() []models.CatalogItem {
	end := r.offset + r.visibleCount
	if end > len(r.items) {
		end = len(r.items)
	}
	return append([]models.CatalogItem(nil), r.items[r.offset:end]...)
}

// Navigate moves the window one page in dir. Rows with at most one item
// ignore navigation.
func (r *Row) Navigate(dir Direction) {
	if len(r.items) <= 1 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch dir {
	case Next:
		r.offset += r.visibleCount
	case Prev:
		r.offset -= r.visibleCount
	default:
		return
	}
	r.offset = clamp(r.offset, 0, r.maxOffset())
}

// CanNavigate reports whether moving in each direction would change the window.
func (r *Row) CanNavigate() (prev, next bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.canNavigateLocked()
}

func (r *Row) canNavigateLocked() (prev, next bool) {
	if len(r.items) <= 1 {
		return false, false
	}
	return r.offset > 0, r.offset < r.maxOffset()
}

func (r *Row) maxOffset() int {
	if n := len(r.items) - r.visibleCount; n > 0 {
		return n
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// View renders the row as the JSON window for a section.
func (r *Row) View(section models.Section) models.RowWindow {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prev, next := r.canNavigateLocked()
	return models.RowWindow{
		SectionID: section.ID,
		Label:     section.Label,
		Offset:    r.offset,
		Total:     len(r.items),
		HasPrev:   prev,
		HasNext:   next,
		Items:     r.windowLocked(),
	}
}
