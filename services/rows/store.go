package rows

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"marquee/models"
)

var (
	ErrSectionNotFound = errors.New("section not found")
	ErrNoHomepage      = errors.New("homepage not built yet")
)

const (
	// DefaultIdleTimeout is how long a visitor's row positions are kept.
	DefaultIdleTimeout = 2 * time.Hour
	// DefaultMaxVisitors caps how many visitors are tracked at once.
	DefaultMaxVisitors = 10000

	cleanupInterval = 10 * time.Minute
)

type visitor struct {
	session models.Session
	builtAt time.Time
	rows    map[string]*Row
}

// Store keeps each visitor's rows in memory. Rows are created lazily from
// the homepage snapshot and recreated when a newer snapshot is published.
// Once maxVisitors are tracked, the least recently seen visitor is dropped.
type Store struct {
	mu           sync.Mutex
	visitors     *simplelru.LRU[string, *visitor]
	visibleCount int
	idleTimeout  time.Duration
	now          func() time.Time
}

// NewStore creates an empty store. Non-positive limits use the defaults.
func NewStore(visibleCount int, idleTimeout time.Duration, maxVisitors int) *Store {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	if maxVisitors <= 0 {
		maxVisitors = DefaultMaxVisitors
	}
	// NewLRU only fails for a non-positive size.
	visitors, _ := simplelru.NewLRU[string, *visitor](maxVisitors, nil)
	return &Store{
		visitors:     visitors,
		visibleCount: visibleCount,
		idleTimeout:  idleTimeout,
		now:          time.Now,
	}
}

// Windows returns the visitor's current window for every section of page,
// in section order.
func (s *Store) Windows(visitorID string, page *models.Homepage) []models.RowWindow {
	if page == nil {
		return nil
	}

	s.mu.Lock()
	v := s.touchLocked(visitorID, page)
	rows := make([]*Row, len(page.Sections))
	for i, section := range page.Sections {
		rows[i] = v.rowLocked(section, s.visibleCount)
	}
	s.mu.Unlock()

	windows := make([]models.RowWindow, len(page.Sections))
	for i, section := range page.Sections {
		windows[i] = rows[i].View(section)
	}
	return windows
}

// Navigate moves one of the visitor's rows and returns its new window.
func (s *Store) Navigate(visitorID string, page *models.Homepage, sectionID string, dir Direction) (models.RowWindow, error) {
	if page == nil {
		return models.RowWindow{}, ErrNoHomepage
	}
	section, ok := page.Section(sectionID)
	if !ok {
		return models.RowWindow{}, ErrSectionNotFound
	}

	s.mu.Lock()
	row := s.touchLocked(visitorID, page).rowLocked(section, s.visibleCount)
	s.mu.Unlock()

	row.Navigate(dir)
	return row.View(section), nil
}

// Cleanup removes visitors idle for longer than the idle timeout.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for _, id := range s.visitors.Keys() {
		v, ok := s.visitors.Peek(id)
		if ok && v.session.IsIdle(s.idleTimeout, now) {
			s.visitors.Remove(id)
			count++
		}
	}
	return count
}

// Run evicts idle visitors periodically until ctx is done.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// Count returns the number of tracked visitors.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visitors.Len()
}

func (s *Store) touchLocked(visitorID string, page *models.Homepage) *visitor {
	now := s.now()
	v, ok := s.visitors.Get(visitorID)
	if !ok {
		v = &visitor{session: models.Session{ID: visitorID, CreatedAt: now}}
		s.visitors.Add(visitorID, v)
	}
	if !ok || !v.builtAt.Equal(page.BuiltAt) {
		v.builtAt = page.BuiltAt
		v.rows = make(map[string]*Row, len(page.Sections))
	}
	v.session.LastSeen = now
	return v
}

func (v *visitor) rowLocked(section models.Section, visibleCount int) *Row {
	row, ok := v.rows[section.ID]
	if !ok {
		row = New(section.Items, visibleCount)
		v.rows[section.ID] = row
	}
	return row
}
