package conversation

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore(ttl, slog.New(slog.DiscardHandler))
	s.now = c.Now
	return s, c
}

// ---------------------------------------------------------------------------
// Begin / Get / Set
// ---------------------------------------------------------------------------

func TestBegin_NewGenerationEachTime(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t, time.Hour)

	first := s.Begin(1, "add_city", "enter_city_name")
	second := s.Begin(1, "add_place", "enter_name")
	if first.Gen == second.Gen {
		t.Fatalf("generations: both %d", first.Gen)
	}

	got, ok := s.Get(1)
	if !ok {
		t.Fatal("state missing")
	}
	if got.Flow != "add_place" || got.Gen != second.Gen {
		t.Errorf("state: got %s/%d, want add_place/%d", got.Flow, got.Gen, second.Gen)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t, time.Hour)
	st := s.Begin(1, "add_place", "enter_social")
	st.Draft.Place.SocialLinks = domain.SocialLinks{"instagram": "https://instagram.com/x"}
	s.Set(st)

	got, _ := s.Get(1)
	got.Draft.Place.SocialLinks["instagram"] = "changed"

	again, _ := s.Get(1)
	if again.Draft.Place.SocialLinks["instagram"] != "https://instagram.com/x" {
		t.Errorf("stored state was mutated through a copy")
	}
}

func TestSetIf_RejectsStaleGeneration(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t, time.Hour)
	old := s.Begin(1, "add_city", "enter_city_name")
	s.Begin(1, "add_ad", "enter_ad_text")

	old.Step = "add_city_photo"
	if s.SetIf(old) {
		t.Fatal("SetIf: got true for a stale generation")
	}
	got, _ := s.Get(1)
	if got.Flow != "add_ad" {
		t.Errorf("flow: got %q, want add_ad", got.Flow)
	}
}

func TestSetIf_MissingState(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t, time.Hour)
	st := s.Begin(1, "add_city", "enter_city_name")
	s.Delete(1)

	if s.SetIf(st) {
		t.Fatal("SetIf: got true after delete")
	}
	if s.Len() != 0 {
		t.Errorf("len: got %d, want 0", s.Len())
	}
}

func TestDeleteIf(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t, time.Hour)
	old := s.Begin(1, "add_city", "enter_city_name")
	cur := s.Begin(1, "add_city", "enter_city_name")

	if s.DeleteIf(1, old.Gen) {
		t.Error("DeleteIf(old): got true")
	}
	if !s.DeleteIf(1, cur.Gen) {
		t.Error("DeleteIf(current): got false")
	}
	if _, ok := s.Get(1); ok {
		t.Error("state still present")
	}
}

// ---------------------------------------------------------------------------
// Expiry
// ---------------------------------------------------------------------------

func TestGet_ExpiresLazily(t *testing.T) {
	t.Parallel()

	s, c := newTestStore(t, 10*time.Minute)
	s.Begin(1, "add_city", "enter_city_name")

	c.Advance(9 * time.Minute)
	if _, ok := s.Get(1); !ok {
		t.Fatal("state expired too early")
	}
	c.Advance(2 * time.Minute)
	if _, ok := s.Get(1); ok {
		t.Fatal("state did not expire")
	}
	if s.Len() != 0 {
		t.Errorf("len: got %d, want 0", s.Len())
	}
}

func TestSet_RefreshesExpiry(t *testing.T) {
	t.Parallel()

	s, c := newTestStore(t, 10*time.Minute)
	st := s.Begin(1, "add_city", "enter_city_name")

	c.Advance(8 * time.Minute)
	st.Step = "add_city_photo"
	if !s.SetIf(st) {
		t.Fatal("SetIf: got false")
	}
	c.Advance(8 * time.Minute)
	if _, ok := s.Get(1); !ok {
		t.Fatal("state expired despite recent write")
	}
}

func TestSweepExpired(t *testing.T) {
	t.Parallel()

	s, c := newTestStore(t, 10*time.Minute)
	s.Begin(1, "add_city", "enter_city_name")
	c.Advance(6 * time.Minute)
	s.Begin(2, "add_ad", "enter_ad_text")
	c.Advance(6 * time.Minute)

	if n := s.SweepExpired(c.Now()); n != 1 {
		t.Errorf("swept: got %d, want 1", n)
	}
	if _, ok := s.Get(2); !ok {
		t.Error("fresh state was swept")
	}
}

func TestNoTTL_KeepsStates(t *testing.T) {
	t.Parallel()

	s, c := newTestStore(t, 0)
	s.Begin(1, "add_city", "enter_city_name")
	c.Advance(24 * time.Hour)

	if n := s.SweepExpired(c.Now()); n != 0 {
		t.Errorf("swept: got %d, want 0", n)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	s, _ := newTestStore(t, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
