package ad

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

type adStore interface {
	Ads(ctx context.Context) ([]domain.Ad, error)
	CreateAd(ctx context.Context, ad domain.Ad) (datasync.Outcome, error)
	PutAd(ctx context.Context, ad domain.Ad) (datasync.Outcome, error)
	DeleteAd(ctx context.Context, id string) (datasync.Outcome, error)
}

const MaxTextLength = 500

// Service manages ads and picks the one shown next.
type Service struct {
	ads   adStore
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

// NewService creates a new Ad service.
func NewService(log *slog.Logger, ads adStore) *Service {
	return &Service{
		ads:   ads,
		log:   log.With("service", "ad"),
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newID: uuid.NewString,
	}
}
