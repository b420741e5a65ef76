package syncer

import (
	"context"

	"github.com/mauv0809/tt-ratings/internal/store"
)

// Service is the sync engine as seen by the HTTP and CLI surfaces.
type Service interface {
	SyncPlayer(ctx context.Context, playerID int64, opts PlayerOptions) (PlayerResult, error)
	SyncClub(ctx context.Context, clubID int64, opts ClubOptions) (ClubResult, error)
	SyncEventForPlayer(ctx context.Context, eventID, playerID int64, meta EventMeta) (EventResult, error)
	Status(ctx context.Context, entity EntityType, id int64) (StatusReport, error)
	CheckConsistency(ctx context.Context, playerID int64) ([]store.Divergence, error)
}
