package syncer

import (
	"context"
	"fmt"
)

// Status reads the sync state stamped on an entity by the pipelines.
func (s *Syncer) Status(ctx context.Context, entity EntityType, id int64) (StatusReport, error) {
	switch entity {
	case EntityPlayer:
		p, err := s.store.GetPlayer(ctx, id)
		if err != nil {
			return StatusReport{}, err
		}
		if p == nil {
			return StatusReport{Status: StatusMissing}, nil
		}
		return StatusReport{Status: string(p.SyncStatus), LastSyncedAt: p.LastSyncedAt, Error: p.SyncError}, nil
	case EntityClub:
		c, err := s.store.GetClub(ctx, id)
		if err != nil {
			return StatusReport{}, err
		}
		if c == nil {
			return StatusReport{Status: StatusMissing}, nil
		}
		return StatusReport{Status: string(c.SyncStatus), LastSyncedAt: c.LastSyncedAt, Error: c.SyncError}, nil
	case EntityEvent:
		ok, err := s.store.EventHasData(ctx, id)
		if err != nil {
			return StatusReport{}, err
		}
		if !ok {
			return StatusReport{Status: StatusMissing}, nil
		}
		return StatusReport{Status: "ok"}, nil
	default:
		return StatusReport{}, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
}
