package city

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, store *cityStoreMock) *Service {
	t.Helper()
	svc := NewService(slog.New(slog.DiscardHandler), store)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func notFound(ctx context.Context, key string) (*domain.City, error) {
	return nil, domain.ErrNotFound
}

// modifyOn applies mutate to city the way the coordinator does.
func modifyOn(city *domain.City, out datasync.Outcome) func(context.Context, string, func(*domain.City) error) (datasync.Outcome, error) {
	return func(_ context.Context, key string, mutate func(*domain.City) error) (datasync.Outcome, error) {
		if city == nil || city.Key != key {
			return datasync.Outcome{}, domain.ErrNotFound
		}
		return out, mutate(city)
	}
}

// ---------------------------------------------------------------------------
// Add
// ---------------------------------------------------------------------------

func TestAdd_Success(t *testing.T) {
	t.Parallel()

	var created *domain.City
	store := &cityStoreMock{
		CityFunc: notFound,
		CreateCityFunc: func(ctx context.Context, c *domain.City) (datasync.Outcome, error) {
			created = c
			return datasync.Outcome{}, nil
		},
	}
	svc := newTestService(t, store)

	city, out, err := svc.Add(context.Background(), "  Valencia  ", PhotoInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Degraded {
		t.Errorf("degraded: got true, want false")
	}
	if city.Key != "valencia" {
		t.Errorf("key: got %q, want %q", city.Key, "valencia")
	}
	if city.Name != "Valencia" {
		t.Errorf("name: got %q, want %q", city.Name, "Valencia")
	}
	if !city.CreatedAt.Equal(fixedNow) || !city.UpdatedAt.Equal(fixedNow) {
		t.Errorf("timestamps: got %v/%v, want %v", city.CreatedAt, city.UpdatedAt, fixedNow)
	}
	if city.Photo != nil {
		t.Errorf("photo: got %v, want nil", city.Photo)
	}
	if created != city {
		t.Errorf("CreateCity received a different city")
	}
}

func TestAdd_WithPhoto(t *testing.T) {
	t.Parallel()

	store := &cityStoreMock{
		CityFunc: notFound,
		CreateCityFunc: func(ctx context.Context, c *domain.City) (datasync.Outcome, error) {
			return datasync.Outcome{}, nil
		},
	}
	svc := newTestService(t, store)

	city, _, err := svc.Add(context.Background(), "Tbilisi", PhotoInput{URL: "https://cdn.example/tb.jpg", FileName: "tb.jpg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if city.Photo == nil || city.Photo.URL != "https://cdn.example/tb.jpg" {
		t.Errorf("photo: got %+v", city.Photo)
	}
}

func TestAdd_TwiceReturnsAlreadyExistsWithoutWrite(t *testing.T) {
	t.Parallel()

	existing := &domain.City{Key: "valencia", Name: "Valencia"}
	store := &cityStoreMock{
		CityFunc: func(ctx context.Context, key string) (*domain.City, error) {
			if key == existing.Key {
				return existing, nil
			}
			return nil, domain.ErrNotFound
		},
	}
	svc := newTestService(t, store)

	_, _, err := svc.Add(context.Background(), "VALENCIA", PhotoInput{})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("error: got %v, want ErrAlreadyExists", err)
	}
	if len(store.CreateCityCalls()) != 0 {
		t.Errorf("CreateCity calls: got %d, want 0", len(store.CreateCityCalls()))
	}
}

func TestAdd_Degraded(t *testing.T) {
	t.Parallel()

	store := &cityStoreMock{
		CityFunc: notFound,
		CreateCityFunc: func(ctx context.Context, c *domain.City) (datasync.Outcome, error) {
			return datasync.Outcome{Degraded: true}, nil
		},
	}
	svc := newTestService(t, store)

	_, out, err := svc.Add(context.Background(), "Valencia", PhotoInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Degraded {
		t.Errorf("degraded: got false, want true")
	}
}

func TestAdd_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		photo PhotoInput
	}{
		{"empty", "", PhotoInput{}},
		{"whitespace", "   \t ", PhotoInput{}},
		{"too long", strings.Repeat("я", MaxNameLength+1), PhotoInput{}},
		{"photo without url", "Valencia", PhotoInput{FileName: "x.jpg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := &cityStoreMock{}
			svc := newTestService(t, store)

			_, _, err := svc.Add(context.Background(), tt.input, tt.photo)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("error: got %v, want ErrValidation", err)
			}
			if len(store.CityCalls()) != 0 {
				t.Errorf("City calls: got %d, want 0", len(store.CityCalls()))
			}
		})
	}
}

func TestAdd_LookupFailureIsReturned(t *testing.T) {
	t.Parallel()

	down := domain.Unavailable(datasync.AllStores, errors.New("both down"))
	store := &cityStoreMock{
		CityFunc: func(ctx context.Context, key string) (*domain.City, error) { return nil, down },
	}
	svc := newTestService(t, store)

	_, _, err := svc.Add(context.Background(), "Valencia", PhotoInput{})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("error: got %v, want ErrStoreUnavailable", err)
	}
	if len(store.CreateCityCalls()) != 0 {
		t.Errorf("CreateCity calls: got %d, want 0", len(store.CreateCityCalls()))
	}
}

// ---------------------------------------------------------------------------
// Rename / SetPhoto
// ---------------------------------------------------------------------------

func TestRename_KeepsKey(t *testing.T) {
	t.Parallel()

	city := &domain.City{Key: "valencia", Name: "Valencia"}
	store := &cityStoreMock{
		CityFunc:       notFound,
		ModifyCityFunc: modifyOn(city, datasync.Outcome{}),
	}
	svc := newTestService(t, store)

	if _, err := svc.Rename(context.Background(), "valencia", "Valencia Centro"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if city.Name != "Valencia Centro" {
		t.Errorf("name: got %q, want %q", city.Name, "Valencia Centro")
	}
	if city.Key != "valencia" {
		t.Errorf("key: got %q, want %q", city.Key, "valencia")
	}
	if !city.UpdatedAt.Equal(fixedNow) {
		t.Errorf("updated_at: got %v, want %v", city.UpdatedAt, fixedNow)
	}
}

func TestRename_SameSlugSkipsLookup(t *testing.T) {
	t.Parallel()

	city := &domain.City{Key: "valencia", Name: "valencia"}
	store := &cityStoreMock{ModifyCityFunc: modifyOn(city, datasync.Outcome{})}
	svc := newTestService(t, store)

	if _, err := svc.Rename(context.Background(), "valencia", "Valencia"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.CityCalls()) != 0 {
		t.Errorf("City calls: got %d, want 0", len(store.CityCalls()))
	}
}

func TestRename_SlugTakenByAnotherCity(t *testing.T) {
	t.Parallel()

	store := &cityStoreMock{
		CityFunc: func(ctx context.Context, key string) (*domain.City, error) {
			return &domain.City{Key: key}, nil
		},
	}
	svc := newTestService(t, store)

	_, err := svc.Rename(context.Background(), "valencia", "Madrid")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("error: got %v, want ErrAlreadyExists", err)
	}
	if len(store.ModifyCityCalls()) != 0 {
		t.Errorf("ModifyCity calls: got %d, want 0", len(store.ModifyCityCalls()))
	}
}

func TestRename_NotFound(t *testing.T) {
	t.Parallel()

	store := &cityStoreMock{
		CityFunc:       notFound,
		ModifyCityFunc: modifyOn(nil, datasync.Outcome{}),
	}
	svc := newTestService(t, store)

	_, err := svc.Rename(context.Background(), "nowhere", "Somewhere")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error: got %v, want ErrNotFound", err)
	}
}

func TestSetPhoto_SetAndClear(t *testing.T) {
	t.Parallel()

	city := &domain.City{Key: "valencia", Name: "Valencia"}
	store := &cityStoreMock{ModifyCityFunc: modifyOn(city, datasync.Outcome{Degraded: true})}
	svc := newTestService(t, store)
	ctx := context.Background()

	out, err := svc.SetPhoto(ctx, "valencia", PhotoInput{URL: "https://cdn.example/v.jpg", SourceRef: "AgAD"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Degraded {
		t.Errorf("degraded: got false, want true")
	}
	if city.Photo == nil || city.Photo.SourceRef != "AgAD" {
		t.Fatalf("photo: got %+v", city.Photo)
	}

	if _, err := svc.SetPhoto(ctx, "valencia", PhotoInput{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if city.Photo != nil {
		t.Errorf("photo: got %+v, want nil", city.Photo)
	}
}

// ---------------------------------------------------------------------------
// Delete / Get / List
// ---------------------------------------------------------------------------

func TestDelete_PassesThroughNotFound(t *testing.T) {
	t.Parallel()

	store := &cityStoreMock{
		DeleteCityFunc: func(ctx context.Context, key string) (datasync.Outcome, error) {
			return datasync.Outcome{}, domain.ErrNotFound
		},
	}
	svc := newTestService(t, store)

	_, err := svc.Delete(context.Background(), "valencia")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error: got %v, want ErrNotFound", err)
	}
}

func TestGet_Success(t *testing.T) {
	t.Parallel()

	store := &cityStoreMock{
		CityFunc: func(ctx context.Context, key string) (*domain.City, error) {
			return &domain.City{Key: key, Name: "Valencia"}, nil
		},
	}
	svc := newTestService(t, store)

	c, err := svc.Get(context.Background(), "valencia")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name != "Valencia" {
		t.Errorf("name: got %q, want %q", c.Name, "Valencia")
	}
}

func TestList_SortedByName(t *testing.T) {
	t.Parallel()

	store := &cityStoreMock{
		CitiesFunc: func(ctx context.Context) ([]*domain.City, error) {
			return []*domain.City{
				{Key: "valencia", Name: "Valencia"},
				{Key: "almaty", Name: "almaty"},
				{Key: "batumi", Name: "Batumi"},
			}, nil
		},
	}
	svc := newTestService(t, store)

	cities, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []string
	for _, c := range cities {
		got = append(got, c.Key)
	}
	want := "almaty,batumi,valencia"
	if strings.Join(got, ",") != want {
		t.Errorf("order: got %v, want %s", got, want)
	}
}
