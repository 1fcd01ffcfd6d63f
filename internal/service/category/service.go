package category

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

type categoryStore interface {
	Category(ctx context.Context, id int) (*domain.Category, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, cat domain.Category) (datasync.Outcome, error)
	PutCategory(ctx context.Context, cat domain.Category) (datasync.Outcome, error)
	DeleteCategory(ctx context.Context, id int) (datasync.Outcome, error)
}

type placeStore interface {
	Cities(ctx context.Context) ([]*domain.City, error)
	ModifyCity(ctx context.Context, key string, mutate func(*domain.City) error) (datasync.Outcome, error)
}

// createAttempts bounds retries when a concurrent Add took the next id.
const createAttempts = 3

// Service manages categories and keeps the category fields copied onto
// places in step with them.
type Service struct {
	categories categoryStore
	places     placeStore
	log        *slog.Logger
	now        func() time.Time
}

// NewService creates a new Category service.
func NewService(log *slog.Logger, categories categoryStore, places placeStore) *Service {
	return &Service{
		categories: categories,
		places:     places,
		log:        log.With("service", "category"),
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// FanOutResult aggregates a category change applied to places.
type FanOutResult struct {
	Updated  int
	Failed   int
	Degraded bool
}
