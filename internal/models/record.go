package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/Siddarth2230/domain-keys/pkg/idgen"
)

// Version tracks when a record was created, last updated, how many times it
// changed, and a hash of its current value.
type Version struct {
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	UpdateCount uint64    `json:"update_count" db:"update_count"`
	Hash        uint64    `json:"hash" db:"hash"`
}

// now matches the microsecond precision Postgres keeps for TIMESTAMPTZ.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func NewVersion(hash uint64) Version {
	ts := now()
	return Version{
		CreatedAt: ts,
		UpdatedAt: ts,
		Hash:      hash,
	}
}

// Update returns the next version. CreatedAt is kept.
func (v Version) Update(hash uint64) Version {
	return Version{
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   now(),
		UpdateCount: v.UpdateCount + 1,
		Hash:        hash,
	}
}

// Model wraps a value with its routing key, version and status.
type Model[T any] struct {
	Key     string  `json:"key" db:"key"`
	Version Version `json:"version"`
	Status  Status  `json:"status"`
	Value   T       `json:"value" db:"value"`
}

// NewModel creates a model for value under a fresh routing key.
func NewModel[T any](gen *idgen.RouteKey, value T) (*Model[T], error) {
	hash, err := CalcHash(value)
	if err != nil {
		return nil, err
	}

	return &Model[T]{
		Key:     gen.Create(),
		Version: NewVersion(hash),
		Status:  NewStatus(StatusNew, 0),
		Value:   value,
	}, nil
}

// Route returns the route of the model key among totalRoutes.
func (m *Model[T]) Route(totalRoutes uint8) (uint8, error) {
	return idgen.ParseRoute(m.Key, totalRoutes)
}

// CalcHash hashes the JSON encoding of value.
func CalcHash[T any](value T) (uint64, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return 0, fmt.Errorf("hash value: %w", err)
	}
	return xxhash.Sum64(data), nil
}

// Record is the model type stored by the service: an arbitrary JSON value.
type Record = Model[json.RawMessage]
