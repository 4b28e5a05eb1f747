package ports

import (
	"context"

	"asset-marketplace/internal/core/domain"
	"asset-marketplace/internal/core/ledger"

	"github.com/google/uuid"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
}

// EventJournal is the append-only persistent log of marketplace events.
// Appends are best-effort from the service's point of view: the journal
// is an audit surface, not part of ledger correctness.
type EventJournal interface {
	Append(ctx context.Context, event domain.Event) error
	ListRecent(ctx context.Context, limit int) ([]domain.Event, error)
}

// SnapshotStore persists ledger state across restarts: saved once at
// shutdown, loaded once at startup.
type SnapshotStore interface {
	Save(state *ledger.State) error
	// Load returns nil when no snapshot exists yet.
	Load() (*ledger.State, error)
	Close() error
}
