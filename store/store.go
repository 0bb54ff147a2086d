// Package store persists the POS records on the device. Every record is a JSON
// document under a fixed key; unreadable records fall back to caller defaults.
package store

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
)

const (
	KeyProducts = "foodpos_products_v1"
	KeyCart     = "foodpos_cart_v1"
	KeySales    = "foodpos_sales_v1"
	KeyAdminPin = "foodpos_admin_pin_v1"
)

// AllKeys lists every record a full reset must remove.
var AllKeys = []string{KeyProducts, KeyCart, KeySales, KeyAdminPin}

// Backend is a raw key-value persistence layer.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

type Store struct {
	backend Backend
	logger  *logrus.Logger
}

func New(backend Backend, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{backend: backend, logger: logger}
}

// Load decodes the record under key into a T. Missing, unreadable or corrupt
// records yield fallback; the failure is logged and never returned.
func Load[T any](ctx context.Context, s *Store, key string, fallback T) T {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.WithFields(logrus.Fields{"module": "store", "key": key}).WithError(err).Warn("read failed; using default")
		return fallback
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fallback
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		s.logger.WithFields(logrus.Fields{"module": "store", "key": key}).WithError(err).Warn("corrupt record; using default")
		return fallback
	}
	return out
}

// Save encodes value as JSON under key.
func (s *Store) Save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.backend.Set(ctx, key, raw)
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.backend.Delete(ctx, keys...)
}
