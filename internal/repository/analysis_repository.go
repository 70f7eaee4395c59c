package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/colormatch/internal/logging"
	"github.com/example/colormatch/internal/undertone"
)

// ErrNotFound is returned when no cached analysis matches the lookup.
var ErrNotFound = errors.New("analysis not found")

// AnalysisRecord is a cached analysis together with the identifiers it was stored under.
type AnalysisRecord struct {
	RequestID string             `json:"request_id"`
	ImageHash string             `json:"sha1_hash"`
	Analysis  undertone.Analysis `json:"analysis"`
	CreatedAt time.Time          `json:"created_at"`
}

// AnalysisRepository keeps recent analyses in an expiring cache, addressable by request
// ID and by the SHA-1 of the photo.
type AnalysisRepository struct {
	cache          Cache
	ttl            time.Duration
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewAnalysisRepository creates a new repository instance.
func NewAnalysisRepository(cache Cache, ttl time.Duration, logger *zap.Logger) *AnalysisRepository {
	return &AnalysisRepository{
		cache:          cache,
		ttl:            ttl,
		logger:         logger.Named("analysis_repository"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

func requestKey(requestID string) string { return "analysis:request:" + requestID }

func hashKey(hash string) string { return "analysis:sha1:" + hash }

// Save stores record under both its request ID and its image hash.
func (r *AnalysisRepository) Save(ctx context.Context, record *AnalysisRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return logging.NewOperationError("repository.encode", record.RequestID, err)
	}
	value := string(payload)

	if err := r.cacheCall(ctx, "repository.save.request", record.RequestID, func() error {
		return r.cache.Set(ctx, requestKey(record.RequestID), value, r.ttl)
	}); err != nil {
		return err
	}
	if record.ImageHash == "" {
		return nil
	}
	return r.cacheCall(ctx, "repository.save.hash", record.RequestID, func() error {
		return r.cache.Set(ctx, hashKey(record.ImageHash), value, r.ttl)
	})
}

// FindByRequestID loads the analysis stored for requestID.
func (r *AnalysisRepository) FindByRequestID(ctx context.Context, requestID string) (*AnalysisRecord, error) {
	return r.find(ctx, "repository.find.request", requestID, requestKey(requestID))
}

// FindByHash loads the most recent analysis of a photo with the given SHA-1.
func (r *AnalysisRepository) FindByHash(ctx context.Context, requestID, hash string) (*AnalysisRecord, error) {
	return r.find(ctx, "repository.find.hash", requestID, hashKey(hash))
}

func (r *AnalysisRepository) find(ctx context.Context, operation, requestID, key string) (*AnalysisRecord, error) {
	var raw string
	err := r.cacheCall(ctx, operation, requestID, func() error {
		value, err := r.cache.Get(ctx, key)
		if err != nil {
			return err
		}
		raw = value
		return nil
	})
	if errors.Is(err, ErrCacheMiss) {
		return nil, logging.NewOperationError(operation, requestID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var record AnalysisRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, logging.NewOperationError(operation, requestID, fmt.Errorf("decode cached analysis: %w", err))
	}
	return &record, nil
}

// cacheCall runs fn against the cache. Connection drops and timeouts, which a Redis
// restart or failover produces, are retried with doubling delays; misses and command
// errors are returned at once. Every failure is wrapped in an OperationError.
func (r *AnalysisRepository) cacheCall(ctx context.Context, operation, requestID string, fn func() error) error {
	opLogger := logging.WithOperation(r.logger, operation, requestID)
	delay := r.initialBackoff

	for attempt := 1; ; attempt++ {
		err := fn()
		switch {
		case err == nil:
			if attempt > 1 {
				opLogger.Info("cache reachable again", zap.Int("attempt", attempt))
			}
			return nil
		case errors.Is(err, ErrCacheMiss):
			return logging.NewOperationError(operation, requestID, err)
		case attempt >= r.retryAttempts || !connectionLost(err):
			opLogger.Error("cache operation failed", zap.Error(err), zap.Int("attempt", attempt))
			return logging.NewOperationError(operation, requestID, err)
		}

		opLogger.Warn("cache connection lost, retrying", zap.Error(err), zap.Int("attempt", attempt), zap.Duration("delay", delay))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return logging.NewOperationError(operation, requestID, ctx.Err())
		case <-timer.C:
		}
		delay = min(2*delay, r.maxBackoff)
	}
}

// connectionLost reports whether err means the cache connection broke rather than
// the command being rejected.
func connectionLost(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
