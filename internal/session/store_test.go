package session

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/vitalmed/exam-bookings/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, time.Hour), mr
}

func TestLoadMissingSessionReturnsDefault(t *testing.T) {
	store, _ := newTestStore(t)

	sess, err := store.Load(context.Background(), "unknown")
	if err != nil {
		t.Fatal(err)
	}
	if sess.State != domain.StateAwaitingIntent {
		t.Errorf("state = %s, want awaiting_intent", sess.State)
	}
	if sess.Draft.Region != "" {
		t.Error("default session should carry an empty draft")
	}
}

func TestSaveThenLoadRoundtrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	in := domain.Session{
		State: domain.StateAwaitingTime,
		Draft: domain.BookingDraft{
			Region:   "Osasco",
			ExamType: "Ultrassom",
			Date:     "2025-06-20",
			Offered:  []string{"2025-06-20 09:00", "2025-06-20 09:30"},
		},
		UpdatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Save(ctx, "sess-1", in); err != nil {
		t.Fatal(err)
	}

	out, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if out.State != in.State {
		t.Errorf("state = %s, want %s", out.State, in.State)
	}
	if out.Draft.Region != "Osasco" || out.Draft.Date != "2025-06-20" {
		t.Errorf("draft = %+v", out.Draft)
	}
	if len(out.Draft.Offered) != 2 {
		t.Errorf("offered = %v", out.Draft.Offered)
	}
}

func TestSaveSetsTTL(t *testing.T) {
	store, mr := newTestStore(t)

	if err := store.Save(context.Background(), "sess-1", domain.NewSession()); err != nil {
		t.Fatal(err)
	}
	if mr.TTL(keyPrefix+"sess-1") != time.Hour {
		t.Errorf("ttl = %v, want 1h", mr.TTL(keyPrefix+"sess-1"))
	}
}

func TestSaveIsUpsert(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first := domain.Session{State: domain.StateAwaitingRegion}
	second := domain.Session{State: domain.StateAwaitingDate, Draft: domain.BookingDraft{Region: "Osasco"}}
	if err := store.Save(ctx, "sess-1", first); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, "sess-1", second); err != nil {
		t.Fatal(err)
	}

	out, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if out.State != domain.StateAwaitingDate {
		t.Errorf("state = %s, want the replacing value", out.State)
	}
}

func TestCorruptBlobFallsBackToDefault(t *testing.T) {
	store, mr := newTestStore(t)

	mr.Set(keyPrefix+"sess-1", "{not json")

	sess, err := store.Load(context.Background(), "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if sess.State != domain.StateAwaitingIntent {
		t.Errorf("state = %s, want fresh default", sess.State)
	}
}

func TestUnknownStateFallsBackToDefault(t *testing.T) {
	store, mr := newTestStore(t)

	mr.Set(keyPrefix+"sess-1", `{"state":"halfway_there","draft":{}}`)

	sess, err := store.Load(context.Background(), "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if sess.State != domain.StateAwaitingIntent {
		t.Errorf("state = %s, want fresh default", sess.State)
	}
}

func TestLoadSurfacesStorageFault(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(client, time.Hour)

	mr.Close()

	if _, err := store.Load(context.Background(), "sess-1"); err == nil {
		t.Fatal("expected error when redis is unreachable")
	}
	if err := store.Save(context.Background(), "sess-1", domain.NewSession()); err == nil {
		t.Fatal("expected error when redis is unreachable")
	}
}
