package history

import (
	"context"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"editbridge/bridge"
	"editbridge/dbopen"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t)
	store, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestAppendAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Append(ctx, "s1", "<p>one</p>")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if id == "" {
		t.Fatal("Append: empty id for new content")
	}

	rev, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rev.HTML != "<p>one</p>" || rev.SessionID != "s1" {
		t.Errorf("revision: got %+v", rev)
	}
	if rev.Hash != HashHTML("<p>one</p>") {
		t.Errorf("hash mismatch: %q", rev.Hash)
	}
}

func TestAppendDeduplicatesLatest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Append(ctx, "s1", "<p>same</p>"); err != nil {
		t.Fatal(err)
	}
	id, err := store.Append(ctx, "s1", "<p>same</p>")
	if err != nil {
		t.Fatal(err)
	}
	if id != "" {
		t.Errorf("duplicate appended: %q", id)
	}

	// A different state, then the first again, is not a duplicate: only the
	// latest revision is compared.
	if _, err := store.Append(ctx, "s1", "<p>other</p>"); err != nil {
		t.Fatal(err)
	}
	id, err = store.Append(ctx, "s1", "<p>same</p>")
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Error("revisit of earlier state deduplicated")
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, h := range []string{"<p>a</p>", "<p>b</p>", "<p>c</p>"} {
		if _, err := store.Append(ctx, "s1", h); err != nil {
			t.Fatal(err)
		}
	}

	revs, err := store.List(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(revs) != 3 {
		t.Fatalf("revisions: got %d, want 3", len(revs))
	}
	if revs[0].HTML != "<p>c</p>" {
		t.Errorf("newest first: got %q", revs[0].HTML)
	}

	limited, err := store.List(ctx, "s1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("limited: got %d, want 2", len(limited))
	}
}

func TestListIsolatesSessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Append(ctx, "s1", "<p>a</p>")
	store.Append(ctx, "s2", "<p>b</p>")

	revs, err := store.List(ctx, "s1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(revs) != 1 || revs[0].SessionID != "s1" {
		t.Errorf("session isolation: got %+v", revs)
	}
}

func TestGetNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing: got %v, want ErrNotFound", err)
	}
}

func TestPrune(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Append(ctx, "s1", "<p>old</p>")
	time.Sleep(5 * time.Millisecond)
	cutoff := time.Now()
	time.Sleep(5 * time.Millisecond)
	store.Append(ctx, "s1", "<p>new</p>")

	n, err := store.Prune(ctx, "s1", cutoff)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned: got %d, want 1", n)
	}

	revs, _ := store.List(ctx, "s1", 0)
	if len(revs) != 1 || revs[0].HTML != "<p>new</p>" {
		t.Errorf("survivors: got %+v", revs)
	}
}

func TestSinkJournalsContentChanges(t *testing.T) {
	store := newTestStore(t)
	sink := NewSink(store, "s1", nil)
	ctx := context.Background()

	sink.HandleNotification(ctx, bridge.Notification{
		Channel: bridge.ChanTextChange,
		Payload: bridge.MarshalPayload(bridge.TextChange{HTML: "<p>x</p>"}),
	})
	// Other channels are ignored.
	sink.HandleNotification(ctx, bridge.Notification{
		Channel: bridge.ChanMentionHide,
		Payload: []byte(`{}`),
	})

	revs, err := store.List(ctx, "s1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(revs) != 1 || revs[0].HTML != "<p>x</p>" {
		t.Errorf("journal: got %+v", revs)
	}
}
