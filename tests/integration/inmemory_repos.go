package integration

import (
	"context"
	"fmt"
	"sync"

	"asset-marketplace/internal/core/domain"

	"github.com/google/uuid"
)

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Username == a.Username {
			return fmt.Errorf("username already exists")
		}
	}
	r.accounts[a.ID] = a
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.accounts[id]; ok {
		return a, nil
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return nil, nil
}

// --- In-Memory Event Journal ---

type inMemoryEventJournal struct {
	mu     sync.RWMutex
	events []domain.Event
}

func newInMemoryEventJournal() *inMemoryEventJournal {
	return &inMemoryEventJournal{}
}

func (j *inMemoryEventJournal) Append(ctx context.Context, event domain.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
	return nil
}

func (j *inMemoryEventJournal) ListRecent(ctx context.Context, limit int) ([]domain.Event, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	n := len(j.events)
	if limit > n {
		limit = n
	}
	out := make([]domain.Event, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, j.events[i])
	}
	return out, nil
}

// --- Fake Ownership Oracle ---

// fakeOracle keeps custody state in memory. Transfer actually moves
// ownership so post-purchase assertions can check it.
type fakeOracle struct {
	mu        sync.Mutex
	owners    map[domain.ListingKey]uuid.UUID
	approved  map[domain.ListingKey]bool
	transfers int
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		owners:   make(map[domain.ListingKey]uuid.UUID),
		approved: make(map[domain.ListingKey]bool),
	}
}

func (o *fakeOracle) setToken(asset string, tokenID uint64, owner uuid.UUID, approved bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := domain.ListingKey{Asset: asset, TokenID: tokenID}
	o.owners[key] = owner
	o.approved[key] = approved
}

func (o *fakeOracle) ownerOf(asset string, tokenID uint64) uuid.UUID {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.owners[domain.ListingKey{Asset: asset, TokenID: tokenID}]
}

func (o *fakeOracle) transferCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.transfers
}

func (o *fakeOracle) OwnerOf(ctx context.Context, asset string, tokenID uint64) (uuid.UUID, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	owner, ok := o.owners[domain.ListingKey{Asset: asset, TokenID: tokenID}]
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown token %s/%d", asset, tokenID)
	}
	return owner, nil
}

func (o *fakeOracle) IsApprovedForTransfer(ctx context.Context, asset string, tokenID uint64, operator string) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.approved[domain.ListingKey{Asset: asset, TokenID: tokenID}], nil
}

func (o *fakeOracle) Transfer(ctx context.Context, asset string, tokenID uint64, from, to uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := domain.ListingKey{Asset: asset, TokenID: tokenID}
	if o.owners[key] != from {
		return fmt.Errorf("%s/%d not owned by %s", asset, tokenID, from)
	}
	o.owners[key] = to
	o.transfers++
	return nil
}

// --- Fake Payment Sink ---

type fakeSink struct {
	mu       sync.Mutex
	payments map[uuid.UUID]int64
}

func newFakeSink() *fakeSink {
	return &fakeSink{payments: make(map[uuid.UUID]int64)}
}

func (s *fakeSink) Pay(ctx context.Context, to uuid.UUID, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[to] += amount
	return nil
}

func (s *fakeSink) paidTo(to uuid.UUID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments[to]
}
