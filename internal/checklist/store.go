// Package checklist is the local shopping checklist: a small document store
// with change subscriptions, backed by SQLite.
package checklist

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joshuaalexanderio/kitchen-iot-hub/internal/logger"
)

// Store is the checklist API used by the UI. Every successful mutation
// publishes the full, newest-first item list to subscribers.
type Store struct {
	repo Repository
	log  *logger.Logger
	now  func() time.Time
	id   func() string

	mu     sync.Mutex
	subs   map[int]chan []Item
	nextID int
}

// NewStore wraps repo.
func NewStore(repo Repository, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		repo: repo,
		log:  log.Named("checklist"),
		now:  time.Now,
		id:   uuid.NewString,
		subs: make(map[int]chan []Item),
	}
}

// List returns the items, newest first.
func (s *Store) List(ctx context.Context) ([]Item, error) {
	return s.repo.List(ctx)
}

// Add stores a new item with trimmed text.
func (s *Store) Add(ctx context.Context, text string) (Item, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Item{}, ErrEmptyText
	}
	item := Item{ID: s.id(), Text: text, CreatedAt: s.now().UTC()}
	if err := s.repo.Insert(ctx, item); err != nil {
		s.log.Errorw("add item failed", "err", err)
		return Item{}, err
	}
	s.log.Debugw("item added", "id", item.ID)
	s.publish(ctx)
	return item, nil
}

// SetCompleted marks the item done or not done.
func (s *Store) SetCompleted(ctx context.Context, id string, completed bool) error {
	if err := s.repo.SetCompleted(ctx, id, completed); err != nil {
		s.log.Errorw("update item failed", "id", id, "err", err)
		return err
	}
	s.publish(ctx)
	return nil
}

// Delete removes the item.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Errorw("delete item failed", "id", id, "err", err)
		return err
	}
	s.publish(ctx)
	return nil
}

// Subscribe returns a channel that receives the current list immediately
// and again after every change. Only the latest list is kept if the reader
// falls behind. Call the returned function to unsubscribe.
func (s *Store) Subscribe(ctx context.Context) (<-chan []Item, func(), error) {
	s.mu.Lock()
	items, err := s.repo.List(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, nil, fmt.Errorf("initial checklist snapshot: %w", err)
	}
	ch := make(chan []Item, 1)
	ch <- items
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}

func (s *Store) publish(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subs) == 0 {
		return
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		s.log.Warnw("checklist snapshot failed", "err", err)
		return
	}
	for _, ch := range s.subs {
		// Drop the stale snapshot, if any, so the newest always lands.
		select {
		case <-ch:
		default:
		}
		ch <- append([]Item(nil), items...)
	}
}
