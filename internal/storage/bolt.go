package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"

	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/model"
)

var (
	bucketClient = []byte("client")
	keyCart      = []byte("cart")
)

// boltStore implements CartStore on top of a bbolt file, the embedded
// key-value store standing in for the device's local storage.
type boltStore struct {
	db     *bolt.DB
	logger zerolog.Logger
}

// Open opens (creating if needed) the local store at path.
func Open(path string, logger zerolog.Logger) (CartStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store at %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketClient)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise local store: %w", err)
	}

	return &boltStore{
		db:     db,
		logger: logger.With().Str("component", "storage").Logger(),
	}, nil
}

// LoadCart returns the persisted cart, or an empty slice when nothing
// has been saved yet.
func (s *boltStore) LoadCart() ([]model.CartItem, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketClient).Get(keyCart); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	if raw == nil {
		return []model.CartItem{}, nil
	}

	var items []model.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		// A corrupt cart is not worth failing startup over; start empty.
		s.logger.Warn().Err(err).Msg("persisted cart is unreadable, starting with an empty cart")
		return []model.CartItem{}, nil
	}

	s.logger.Debug().Int("item_count", len(items)).Msg("cart loaded from local store")
	return items, nil
}

// SaveCart replaces the persisted cart.
func (s *boltStore) SaveCart(items []model.CartItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketClient).Put(keyCart, raw)
	})
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	s.logger.Debug().Int("item_count", len(items)).Msg("cart saved to local store")
	return nil
}

// Close releases the underlying bbolt file.
func (s *boltStore) Close() error {
	return s.db.Close()
}
