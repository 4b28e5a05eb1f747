package pebble

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"asset-marketplace/internal/core/domain"
	"asset-marketplace/internal/core/ledger"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	listingPrefix  = "listing/"
	proceedsPrefix = "proceeds/"
	metaSavedAtKey = "meta/saved_at"
)

// SnapshotStore persists ledger state in an embedded Pebble database.
// Listings are stored under listing/<asset>/<token_id>, proceeds under
// proceeds/<seller>. A meta key marks that a snapshot has been written
// at least once.
type SnapshotStore struct {
	db  *pebble.DB
	log zerolog.Logger
}

// Open creates or opens the snapshot database at dir.
func Open(dir string, log zerolog.Logger) (*SnapshotStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // we WANT durability
	})
	if err != nil {
		return nil, fmt.Errorf("opening snapshot db: %w", err)
	}
	return &SnapshotStore{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// Save replaces the stored snapshot with the given state atomically.
func (s *SnapshotStore) Save(state *ledger.State) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	// Clear previous snapshot before writing the new one.
	if err := batch.DeleteRange([]byte(listingPrefix), []byte(listingPrefix+"~"), nil); err != nil {
		return fmt.Errorf("clear listings: %w", err)
	}
	if err := batch.DeleteRange([]byte(proceedsPrefix), []byte(proceedsPrefix+"~"), nil); err != nil {
		return fmt.Errorf("clear proceeds: %w", err)
	}

	for _, l := range state.Listings {
		val, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("encode listing %s/%d: %w", l.Asset, l.TokenID, err)
		}
		if err := batch.Set(listingKey(l.Asset, l.TokenID), val, nil); err != nil {
			return fmt.Errorf("set listing %s/%d: %w", l.Asset, l.TokenID, err)
		}
	}

	for _, p := range state.Proceeds {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(p.Balance))
		if err := batch.Set(proceedsKey(p.Seller), buf[:], nil); err != nil {
			return fmt.Errorf("set proceeds %s: %w", p.Seller, err)
		}
	}

	savedAt := time.Now().UTC().Format(time.RFC3339Nano)
	if err := batch.Set([]byte(metaSavedAtKey), []byte(savedAt), nil); err != nil {
		return fmt.Errorf("set meta: %w", err)
	}

	if err := s.db.Apply(batch, pebble.Sync); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	s.log.Info().
		Int("listings", len(state.Listings)).
		Int("proceeds", len(state.Proceeds)).
		Msg("ledger snapshot saved")
	return nil
}

// Load reads the stored snapshot. Returns (nil, nil) when no snapshot
// has ever been saved.
func (s *SnapshotStore) Load() (*ledger.State, error) {
	_, closer, err := s.db.Get([]byte(metaSavedAtKey))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read meta: %w", err)
	}
	closer.Close()

	state := &ledger.State{}

	if err := s.scan(listingPrefix, func(key, val []byte) error {
		var l domain.Listing
		if err := json.Unmarshal(val, &l); err != nil {
			return fmt.Errorf("decode listing %s: %w", key, err)
		}
		state.Listings = append(state.Listings, l)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := s.scan(proceedsPrefix, func(key, val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("invalid proceeds record length %d for %s", len(val), key)
		}
		seller, err := uuid.Parse(string(key[len(proceedsPrefix):]))
		if err != nil {
			return fmt.Errorf("parse proceeds key %s: %w", key, err)
		}
		state.Proceeds = append(state.Proceeds, ledger.ProceedsEntry{
			Seller:  seller,
			Balance: int64(binary.BigEndian.Uint64(val)),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("listings", len(state.Listings)).
		Int("proceeds", len(state.Proceeds)).
		Msg("ledger snapshot loaded")
	return state, nil
}

func (s *SnapshotStore) scan(prefix string, fn func(key, val []byte) error) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: []byte(prefix + "~"),
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", prefix, err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

func listingKey(asset string, tokenID uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d", listingPrefix, asset, tokenID))
}

func proceedsKey(seller uuid.UUID) []byte {
	return []byte(proceedsPrefix + seller.String())
}
