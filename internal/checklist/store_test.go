package checklist

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "sub", "checklist.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	s := NewStore(NewSQLiteRepo(db), nil)
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	seq := 0
	s.id = func() string {
		seq++
		return fmt.Sprintf("item-%02d", seq)
	}
	return s
}

func recv(t *testing.T, ch <-chan []Item) []Item {
	t.Helper()
	select {
	case items, ok := <-ch:
		if !ok {
			t.Fatal("subscription closed")
		}
		return items
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
		return nil
	}
}

func texts(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func TestStore_AddListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	c := context.Background()

	for _, text := range []string{"milk", "  eggs  ", "bread"} {
		if _, err := s.Add(c, text); err != nil {
			t.Fatalf("Add(%q): %v", text, err)
		}
	}

	items, err := s.List(c)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := texts(items)
	want := []string{"bread", "eggs", "milk"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
}

func TestStore_RejectsBlankText(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Add(context.Background(), "   "); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("Add(blank) = %v, want ErrEmptyText", err)
	}
}

func TestStore_ToggleAndDelete(t *testing.T) {
	s := newTestStore(t)
	c := context.Background()

	item, err := s.Add(c, "milk")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.SetCompleted(c, item.ID, true); err != nil {
		t.Fatalf("SetCompleted: %v", err)
	}
	items, _ := s.List(c)
	if len(items) != 1 || !items[0].Completed {
		t.Fatalf("List after complete = %+v", items)
	}

	if err := s.Delete(c, item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(c, item.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}
	if err := s.SetCompleted(c, "nope", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetCompleted(unknown) = %v, want ErrNotFound", err)
	}
}

func TestStore_SubscribeReceivesChanges(t *testing.T) {
	s := newTestStore(t)
	c := context.Background()

	if _, err := s.Add(c, "milk"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ch, cancel, err := s.Subscribe(c)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	if got := texts(recv(t, ch)); fmt.Sprint(got) != "[milk]" {
		t.Fatalf("initial snapshot = %v", got)
	}

	eggs, err := s.Add(c, "eggs")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := texts(recv(t, ch)); fmt.Sprint(got) != "[eggs milk]" {
		t.Fatalf("snapshot after add = %v", got)
	}

	if err := s.Delete(c, eggs.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := texts(recv(t, ch)); fmt.Sprint(got) != "[milk]" {
		t.Fatalf("snapshot after delete = %v", got)
	}
}

func TestStore_SlowSubscriberGetsLatest(t *testing.T) {
	s := newTestStore(t)
	c := context.Background()

	ch, cancel, err := s.Subscribe(c)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	for _, text := range []string{"a", "b", "c"} {
		if _, err := s.Add(c, text); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	if got := texts(recv(t, ch)); fmt.Sprint(got) != "[c b a]" {
		t.Fatalf("latest snapshot = %v", got)
	}
}

func TestStore_CancelClosesChannel(t *testing.T) {
	s := newTestStore(t)
	c := context.Background()

	ch, cancel, err := s.Subscribe(c)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	recv(t, ch)
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatal("channel still open after cancel")
	}
	if _, err := s.Add(c, "after"); err != nil {
		t.Fatalf("Add after cancel: %v", err)
	}
}
