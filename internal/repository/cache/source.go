package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-overtime-report/internal/domain/overtime"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "overtime:master:"
	shiftTypesKey = keyPrefix + "shift_types"
)

// CachedSource is an overtime.Source that keeps master data in Redis.
type CachedSource struct {
	overtime.Source
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedSource caches employee and shift-type master data read through next for ttl.
// Assignments and check events always go to next. Redis failures fall back to next.
func NewCachedSource(next overtime.Source, rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSource{Source: next, rdb: rdb, ttl: ttl, logger: logger}
}

// FetchEmployees implements overtime.Source.
func (c *CachedSource) FetchEmployees(ctx context.Context, company, department string) ([]overtime.Employee, error) {
	return readThrough(ctx, c, employeesKey(company, department), func(ctx context.Context) ([]overtime.Employee, error) {
		return c.Source.FetchEmployees(ctx, company, department)
	})
}

// FetchShiftTypes implements overtime.Source.
func (c *CachedSource) FetchShiftTypes(ctx context.Context) ([]overtime.ShiftType, error) {
	return readThrough(ctx, c, shiftTypesKey, c.Source.FetchShiftTypes)
}

// Refresh reloads the unfiltered employee list and the shift types into the cache,
// so the first report after expiry does not pay for the reload.
func (c *CachedSource) Refresh(ctx context.Context) error {
	employees, err := c.Source.FetchEmployees(ctx, "", "")
	if err != nil {
		return fmt.Errorf("refresh employees: %w", err)
	}
	if err := c.store(ctx, employeesKey("", ""), employees); err != nil {
		return err
	}

	shiftTypes, err := c.Source.FetchShiftTypes(ctx)
	if err != nil {
		return fmt.Errorf("refresh shift types: %w", err)
	}
	return c.store(ctx, shiftTypesKey, shiftTypes)
}

func (c *CachedSource) store(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func employeesKey(company, department string) string {
	return keyPrefix + "employees:" + company + ":" + department
}

func readThrough[T any](ctx context.Context, c *CachedSource, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn("Discarding undecodable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Cache read failed", "key", key, "error", err)
	}

	value, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.store(ctx, key, value); err != nil {
		c.logger.Warn("Cache write failed", "key", key, "error", err)
	}
	return value, nil
}
