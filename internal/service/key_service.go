package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Siddarth2230/domain-keys/internal/models"
	"github.com/Siddarth2230/domain-keys/internal/repository"
	"github.com/Siddarth2230/domain-keys/pkg/cache"
	"github.com/Siddarth2230/domain-keys/pkg/idgen"
	"github.com/Siddarth2230/domain-keys/pkg/metrics"
)

var (
	ErrInvalidKey   = errors.New("invalid key")
	ErrInvalidValue = errors.New("invalid value")
	ErrInvalidCount = errors.New("invalid count")
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("record was modified concurrently")
	ErrGenExhausted = errors.New("failed to generate unique key after retries")
	ErrUnavailable  = errors.New("feature not configured")
)

const (
	// MaxBatch bounds how many keys one call may create.
	MaxBatch = 1000
	// MaxList bounds how many records one route listing returns.
	MaxList = 500
	// DefaultL1TTL bounds how long a process serves a record from its own
	// cache after another instance changed or deleted it.
	DefaultL1TTL = 5 * time.Second

	maxAttempts = 5
)

// RecordStore persists records.
type RecordStore interface {
	Save(ctx context.Context, rec *models.Record, route, routes uint8) error
	FindByKey(ctx context.Context, key string) (*models.Record, error)
	Update(ctx context.Context, rec *models.Record, prevCount uint64) error
	DeleteByKey(ctx context.Context, key string) error
	ListByRoute(ctx context.Context, route, routes uint8, limit int) ([]*models.Record, error)
}

// RecordCache is the shared (L2) record cache.
type RecordCache interface {
	Get(ctx context.Context, key string) (*models.Record, error)
	Set(ctx context.Context, key string, rec *models.Record) error
	Delete(ctx context.Context, key string) error
}

// RouteCounter counts keys issued per route.
type RouteCounter interface {
	Record(ctx context.Context, key string, totalRoutes uint8) (uint8, error)
	Counts(ctx context.Context, totalRoutes uint8) ([]int64, error)
}

// KeyFilter answers "definitely absent" for keys that were never stored.
type KeyFilter interface {
	Add(key string)
	MightContain(key string) bool
}

type Options struct {
	Routes    uint8
	TxKeySize int
	LRUSize   int
	L1TTL     time.Duration

	// Optional collaborators.
	L2      RecordCache
	Counter RouteCounter
	Filter  KeyFilter
	Keys    *idgen.RouteKey
}

// KeyService issues and inspects keys and stores records under routing keys.
type KeyService struct {
	store   RecordStore
	keys    *idgen.RouteKey
	tx      *idgen.TxKey
	routes  uint8
	l1      *cache.LRU[*models.Record]
	l2      RecordCache
	counter RouteCounter
	filter  KeyFilter
}

func NewKeyService(store RecordStore, opts Options) (*KeyService, error) {
	if opts.TxKeySize == 0 {
		opts.TxKeySize = idgen.DefaultTxKeySize
	}
	tx, err := idgen.NewTxKey(opts.TxKeySize)
	if err != nil {
		return nil, err
	}

	if opts.L1TTL <= 0 {
		opts.L1TTL = DefaultL1TTL
	}

	keys := opts.Keys
	if keys == nil {
		keys = idgen.NewRouteKey()
	}

	return &KeyService{
		store:   store,
		keys:    keys,
		tx:      tx,
		routes:  idgen.ClampRoutes(opts.Routes),
		l1:      cache.NewLRU[*models.Record](opts.LRUSize, cache.WithTTL(opts.L1TTL)),
		l2:      opts.L2,
		counter: opts.Counter,
		filter:  opts.Filter,
	}, nil
}

// Routes returns the configured route count.
func (s *KeyService) Routes() uint8 {
	return s.routes
}

func (s *KeyService) routesOrDefault(routes uint8) uint8 {
	if routes == 0 {
		return s.routes
	}
	return idgen.ClampRoutes(routes)
}

func checkCount(count int) error {
	if count < 1 || count > MaxBatch {
		return fmt.Errorf("%w: must be 1..%d, got %d", ErrInvalidCount, MaxBatch, count)
	}
	return nil
}

func microsToTime(us uint64) time.Time {
	return time.UnixMicro(int64(us)).UTC()
}

// CreateKeys returns count new routing keys with their route among routes
// (0 means the configured route count) and embedded timestamp.
func (s *KeyService) CreateKeys(ctx context.Context, count int, routes uint8) ([]models.KeyInfo, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}

	out := make([]models.KeyInfo, 0, count)
	for i := 0; i < count; i++ {
		key, err := s.keys.Generate(ctx)
		if err != nil {
			return nil, err
		}
		info, err := s.InspectKey(key, routes)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}

	metrics.KeysGenerated.WithLabelValues("route").Add(float64(count))
	return out, nil
}

// InspectKey parses the route and timestamp of a routing key.
func (s *KeyService) InspectKey(key string, routes uint8) (models.KeyInfo, error) {
	routes = s.routesOrDefault(routes)

	ts, err := idgen.ParseTimestamp(key)
	if err != nil {
		metrics.KeyParseErrors.WithLabelValues("timestamp").Inc()
		return models.KeyInfo{}, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	route, err := idgen.ParseRoute(key, routes)
	if err != nil {
		metrics.KeyParseErrors.WithLabelValues("route").Inc()
		return models.KeyInfo{}, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	return models.KeyInfo{
		Key:       key,
		Route:     route,
		Routes:    routes,
		Timestamp: ts,
		Time:      microsToTime(ts),
	}, nil
}

// CreateTxKeys returns count new timestamp keys.
func (s *KeyService) CreateTxKeys(ctx context.Context, count int) ([]models.TxKeyInfo, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}

	out := make([]models.TxKeyInfo, 0, count)
	for i := 0; i < count; i++ {
		key, err := s.tx.Generate(ctx)
		if err != nil {
			return nil, err
		}
		ts, err := s.tx.ParseTimestamp(key)
		if err != nil {
			return nil, err
		}
		out = append(out, models.TxKeyInfo{Key: key, Timestamp: ts, Time: microsToTime(ts)})
	}

	metrics.KeysGenerated.WithLabelValues("tx").Add(float64(count))
	return out, nil
}

// Encode parses a decimal uint64 and returns its base62 form.
func (s *KeyService) Encode(decimal string) (models.Base62Response, error) {
	n, err := strconv.ParseUint(decimal, 10, 64)
	if err != nil {
		return models.Base62Response{}, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	return models.Base62Response{Value: n, Encoded: idgen.Encode(n)}, nil
}

func (s *KeyService) Decode(encoded string) (models.Base62Response, error) {
	n, err := idgen.Decode(encoded)
	if err != nil {
		metrics.KeyParseErrors.WithLabelValues("decode").Inc()
		return models.Base62Response{}, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	return models.Base62Response{Value: n, Encoded: encoded}, nil
}

func validateValue(v json.RawMessage) error {
	if len(v) == 0 || !json.Valid(v) {
		return fmt.Errorf("%w: value must be valid JSON", ErrInvalidValue)
	}
	return nil
}

// CreateRecord stores a new record under a fresh routing key. It retries
// when the key collides with a stored one.
func (s *KeyService) CreateRecord(ctx context.Context, req models.RecordRequest) (*models.Record, error) {
	if err := validateValue(req.Value); err != nil {
		return nil, err
	}

	for i := 0; i < maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := models.NewModel(s.keys, req.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		if req.Status != nil {
			rec.Status = *req.Status
		}

		route, err := rec.Route(s.routes)
		if err != nil {
			return nil, err
		}

		err = s.store.Save(ctx, rec, route, s.routes)
		if errors.Is(err, repository.ErrDuplicateKey) {
			slog.WarnContext(ctx, "routing key collision, retrying", "key", rec.Key, "attempt", i+1)
			continue
		}
		if err != nil {
			return nil, err
		}

		if s.filter != nil {
			s.filter.Add(rec.Key)
		}
		s.recordRoute(ctx, rec.Key, route)
		s.cachePut(ctx, rec)
		return rec, nil
	}

	return nil, ErrGenExhausted
}

func (s *KeyService) recordRoute(ctx context.Context, key string, route uint8) {
	metrics.RouteAssignments.WithLabelValues(strconv.Itoa(int(route))).Inc()
	metrics.KeysGenerated.WithLabelValues("route").Inc()

	if s.counter == nil {
		return
	}
	if _, err := s.counter.Record(ctx, key, s.routes); err != nil {
		// counters are advisory
		slog.WarnContext(ctx, "route counter update failed", "key", key, "error", err)
	}
}

func checkKey(key string) error {
	if _, err := idgen.ParseTimestamp(key); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return nil
}

// GetRecord reads a record through the LRU, then Redis, then the store.
func (s *KeyService) GetRecord(ctx context.Context, key string) (*models.Record, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	if rec, ok := s.l1.Get(key); ok {
		metrics.CacheHits.WithLabelValues("l1").Inc()
		return rec, nil
	}
	metrics.CacheMisses.WithLabelValues("l1").Inc()

	if s.l2 != nil {
		rec, err := s.l2.Get(ctx, key)
		switch {
		case err == nil:
			metrics.CacheHits.WithLabelValues("l2").Inc()
			s.l1.Put(key, rec)
			return rec, nil
		case errors.Is(err, cache.ErrCacheMiss):
			metrics.CacheMisses.WithLabelValues("l2").Inc()
		default:
			slog.WarnContext(ctx, "l2 cache read failed", "key", key, "error", err)
		}
	}

	if s.filter != nil && !s.filter.MightContain(key) {
		metrics.FilterRejections.Inc()
		return nil, ErrNotFound
	}

	rec, err := s.store.FindByKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.cachePut(ctx, rec)
	return rec, nil
}

// UpdateRecord replaces the value and, if given, the status of a record. The
// version only moves when the value hash or the status changes.
func (s *KeyService) UpdateRecord(ctx context.Context, key string, req models.RecordRequest) (*models.Record, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if err := validateValue(req.Value); err != nil {
		return nil, err
	}

	current, err := s.store.FindByKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	hash, err := models.CalcHash(req.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	status := current.Status
	if req.Status != nil {
		status = *req.Status
	}
	if hash == current.Version.Hash && status == current.Status {
		return current, nil
	}

	next := &models.Record{
		Key:     current.Key,
		Version: current.Version.Update(hash),
		Status:  status,
		Value:   req.Value,
	}

	err = s.store.Update(ctx, next, current.Version.UpdateCount)
	switch {
	case errors.Is(err, repository.ErrStale):
		s.cacheDelete(ctx, key)
		return nil, ErrConflict
	case errors.Is(err, repository.ErrNotFound):
		s.cacheDelete(ctx, key)
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}

	s.cachePut(ctx, next)
	return next, nil
}

func (s *KeyService) DeleteRecord(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	err := s.store.DeleteByKey(ctx, key)
	s.cacheDelete(ctx, key)

	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// ListRoute returns up to limit records stored on route.
func (s *KeyService) ListRoute(ctx context.Context, route uint8, limit int) ([]*models.Record, error) {
	if route >= s.routes {
		return nil, fmt.Errorf("%w: route must be below %d, got %d", ErrInvalidValue, s.routes, route)
	}
	if limit <= 0 || limit > MaxList {
		limit = MaxList
	}
	return s.store.ListByRoute(ctx, route, s.routes, limit)
}

// RouteCounts returns how many records were issued on each route.
func (s *KeyService) RouteCounts(ctx context.Context) (models.RouteCountsResponse, error) {
	if s.counter == nil {
		return models.RouteCountsResponse{}, ErrUnavailable
	}

	counts, err := s.counter.Counts(ctx, s.routes)
	if err != nil {
		return models.RouteCountsResponse{}, err
	}
	return models.RouteCountsResponse{Routes: s.routes, Counts: counts}, nil
}

func (s *KeyService) cachePut(ctx context.Context, rec *models.Record) {
	s.l1.Put(rec.Key, rec)
	if s.l2 == nil {
		return
	}
	if err := s.l2.Set(ctx, rec.Key, rec); err != nil {
		slog.WarnContext(ctx, "l2 cache write failed", "key", rec.Key, "error", err)
	}
}

func (s *KeyService) cacheDelete(ctx context.Context, key string) {
	s.l1.Delete(key)
	if s.l2 == nil {
		return
	}
	if err := s.l2.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "l2 cache delete failed", "key", key, "error", err)
	}
}
