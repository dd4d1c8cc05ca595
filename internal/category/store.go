package category

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Listener is called after every successful write with the new version and
// a copy of the category list.
type Listener func(version uint64, cats []Category)

// Store owns the category list shared by every screen. Writers replace the
// whole list through Set; the helper operations build the new list and go
// through the same path.
type Store struct {
	mu        sync.RWMutex
	cats      []Category
	selected  string
	version   uint64
	listeners map[int]Listener
	nextID    int
}

// NewStore creates a Store seeded with the given categories. Missing ids and
// colours are filled in; the first category starts selected.
func NewStore(initial []Category) (*Store, error) {
	s := &Store{listeners: make(map[int]Listener)}
	cats, err := normalize(initial)
	if err != nil {
		return nil, err
	}
	s.cats = cats
	if len(cats) > 0 {
		s.selected = cats[0].ID
	}
	return s, nil
}

// FromLabels builds categories for the given labels with palette colours
// assigned by position.
func FromLabels(labels []string) []Category {
	cats := make([]Category, len(labels))
	for i, l := range labels {
		cats[i] = Category{ID: uuid.New().String(), Label: l, Color: ColorFor(i)}
	}
	return cats
}

// Get returns a copy of the current category list.
func (s *Store) Get() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.cats)
}

// Snapshot returns a copy of the list together with its version.
func (s *Store) Snapshot() ([]Category, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.cats), s.version
}

// Version increments on every successful write.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Set replaces the category list.
func (s *Store) Set(cats []Category) error {
	return s.update(func([]Category) ([]Category, error) { return cats, nil })
}

// Add appends a category named "Category N" with the next palette colour and
// selects it.
func (s *Store) Add() (Category, error) {
	return s.AddLabel("")
}

// AddLabel appends a category with the given label (or a generated one when
// empty) and selects it.
func (s *Store) AddLabel(label string) (Category, error) {
	var added Category
	err := s.commit(func(cur []Category) ([]Category, string, error) {
		if len(cur) >= MaxCategories {
			return nil, "", ErrLimitReached
		}
		if label == "" {
			label = nextLabel(cur)
		}
		added = Category{ID: uuid.New().String(), Label: label, Color: ColorFor(len(cur))}
		return append(cur, added), added.ID, nil
	})
	if err != nil {
		return Category{}, err
	}
	return added, nil
}

// Rename changes the label of the category with the given id. A selected
// category stays selected under its new label.
func (s *Store) Rename(id, label string) error {
	return s.update(func(cur []Category) ([]Category, error) {
		i := IndexOf(cur, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		cur[i].Label = label
		return cur, nil
	})
}

// Remove deletes the category with the given id. Removing the selected
// category selects the first remaining one.
func (s *Store) Remove(id string) error {
	return s.update(func(cur []Category) ([]Category, error) {
		i := IndexOf(cur, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		return append(cur[:i], cur[i+1:]...), nil
	})
}

// Select marks the category with the given label (or id) as the capture target.
func (s *Store) Select(labelOrID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cats {
		if c.Label == labelOrID || c.ID == labelOrID {
			s.selected = c.ID
			return nil
		}
	}
	return ErrNotFound
}

// Selected returns the current capture target.
func (s *Store) Selected() (Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := IndexOf(s.cats, s.selected); i >= 0 {
		return s.cats[i], nil
	}
	return Category{}, ErrNoSelection
}

// Subscribe registers l for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) update(fn func([]Category) ([]Category, error)) error {
	return s.commit(func(cur []Category) ([]Category, string, error) {
		next, err := fn(cur)
		return next, "", err
	})
}

// commit applies fn under the write lock. A non-empty id returned by fn
// becomes the selection before listeners run.
func (s *Store) commit(fn func([]Category) ([]Category, string, error)) error {
	s.mu.Lock()
	next, selectID, err := fn(clone(s.cats))
	if err != nil {
		s.mu.Unlock()
		return err
	}
	next, err = normalize(next)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.cats = next
	s.version++
	if selectID != "" {
		s.selected = selectID
	}
	if IndexOf(next, s.selected) < 0 {
		s.selected = ""
		if len(next) > 0 {
			s.selected = next[0].ID
		}
	}
	version := s.version
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(version, clone(next))
	}
	return nil
}

// normalize validates cats and fills in missing ids and colours.
func normalize(cats []Category) ([]Category, error) {
	if len(cats) > MaxCategories {
		return nil, fmt.Errorf("%w: %d categories, at most %d allowed", ErrLimitReached, len(cats), MaxCategories)
	}
	out := make([]Category, len(cats))
	seen := make(map[string]bool, len(cats))
	seenID := make(map[string]bool, len(cats))
	for i, c := range cats {
		c.Label = strings.TrimSpace(c.Label)
		if c.Label == "" {
			return nil, ErrEmptyLabel
		}
		if seen[c.Label] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLabel, c.Label)
		}
		seen[c.Label] = true
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if seenID[c.ID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, c.ID)
		}
		seenID[c.ID] = true
		if c.Color == "" {
			c.Color = ColorFor(i)
		}
		out[i] = c
	}
	return out, nil
}

func nextLabel(cur []Category) string {
	taken := make(map[string]bool, len(cur))
	for _, c := range cur {
		taken[c.Label] = true
	}
	for n := len(cur) + 1; ; n++ {
		label := fmt.Sprintf("Category %d", n)
		if !taken[label] {
			return label
		}
	}
}

func clone(cats []Category) []Category {
	if cats == nil {
		return []Category{}
	}
	out := make([]Category, len(cats))
	copy(out, cats)
	return out
}
