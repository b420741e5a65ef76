package syncer

import (
	"context"
	"sync"

	"github.com/mauv0809/tt-ratings/internal/store"
)

// MockService is a mock implementation of the Service interface for testing.
// It is safe for concurrent use.
type MockService struct {
	mu sync.Mutex

	// Spies for method calls
	SyncPlayerFunc         func(ctx context.Context, playerID int64, opts PlayerOptions) (PlayerResult, error)
	SyncClubFunc           func(ctx context.Context, clubID int64, opts ClubOptions) (ClubResult, error)
	SyncEventForPlayerFunc func(ctx context.Context, eventID, playerID int64, meta EventMeta) (EventResult, error)
	StatusFunc             func(ctx context.Context, entity EntityType, id int64) (StatusReport, error)
	CheckConsistencyFunc   func(ctx context.Context, playerID int64) ([]store.Divergence, error)

	// Call records
	SyncPlayerCalls         []PlayerCall
	SyncClubCalls           []ClubCall
	SyncEventForPlayerCalls []EventCall
	StatusCalls             []StatusCall
	CheckConsistencyCalls   []int64
}

type PlayerCall struct {
	PlayerID int64
	Opts     PlayerOptions
}

type ClubCall struct {
	ClubID int64
	Opts   ClubOptions
}

type EventCall struct {
	EventID  int64
	PlayerID int64
	Meta     EventMeta
}

type StatusCall struct {
	Entity EntityType
	ID     int64
}

var _ Service = (*MockService)(nil)

// NewMock creates a new mock instance.
func NewMock() *MockService {
	return &MockService{}
}

// Reset clears all call records.
func (m *MockService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SyncPlayerCalls = nil
	m.SyncClubCalls = nil
	m.SyncEventForPlayerCalls = nil
	m.StatusCalls = nil
	m.CheckConsistencyCalls = nil
}

func (m *MockService) SyncPlayer(ctx context.Context, playerID int64, opts PlayerOptions) (PlayerResult, error) {
	m.mu.Lock()
	m.SyncPlayerCalls = append(m.SyncPlayerCalls, PlayerCall{PlayerID: playerID, Opts: opts})
	fn := m.SyncPlayerFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, playerID, opts)
	}
	return PlayerResult{PlayerID: playerID, Status: store.StatusOK}, nil
}

func (m *MockService) SyncClub(ctx context.Context, clubID int64, opts ClubOptions) (ClubResult, error) {
	m.mu.Lock()
	m.SyncClubCalls = append(m.SyncClubCalls, ClubCall{ClubID: clubID, Opts: opts})
	fn := m.SyncClubFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, clubID, opts)
	}
	return ClubResult{ClubID: clubID}, nil
}

func (m *MockService) SyncEventForPlayer(ctx context.Context, eventID, playerID int64, meta EventMeta) (EventResult, error) {
	m.mu.Lock()
	m.SyncEventForPlayerCalls = append(m.SyncEventForPlayerCalls, EventCall{EventID: eventID, PlayerID: playerID, Meta: meta})
	fn := m.SyncEventForPlayerFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, eventID, playerID, meta)
	}
	return EventResult{EventID: eventID, PlayerID: playerID}, nil
}

func (m *MockService) Status(ctx context.Context, entity EntityType, id int64) (StatusReport, error) {
	m.mu.Lock()
	m.StatusCalls = append(m.StatusCalls, StatusCall{Entity: entity, ID: id})
	fn := m.StatusFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, entity, id)
	}
	return StatusReport{Status: StatusMissing}, nil
}

func (m *MockService) CheckConsistency(ctx context.Context, playerID int64) ([]store.Divergence, error) {
	m.mu.Lock()
	m.CheckConsistencyCalls = append(m.CheckConsistencyCalls, playerID)
	fn := m.CheckConsistencyFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, playerID)
	}
	return nil, nil
}
