package tuition

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

// =============================================================================
// RECEIPT NUMBERS
// =============================================================================
//
// Format: RCP-<unix seconds>-<3 digits>. The suffix ranges over 100-999, so a
// second holds at most 900 receipts.

const (
	minReceiptSuffix = 100
	maxReceiptSuffix = 999
)

// FormatReceiptNumber renders a receipt number for the given instant.
func FormatReceiptNumber(at time.Time, suffix int) string {
	return fmt.Sprintf("RCP-%d-%03d", at.Unix(), suffix)
}

// ReceiptNumberer hands out receipt numbers. Uniqueness is finally enforced
// by the store's unique key on receipt_number.
type ReceiptNumberer interface {
	Next(ctx context.Context, at time.Time) (string, error)
}

// RandomReceipts picks a random suffix. Two payments within the same second
// can collide; the store rejects the second one with DuplicateRecordError.
type RandomReceipts struct{}

func (RandomReceipts) Next(_ context.Context, at time.Time) (string, error) {
	suffix := minReceiptSuffix + rand.Intn(maxReceiptSuffix-minReceiptSuffix+1)
	return FormatReceiptNumber(at, suffix), nil
}

// RedisReceipts draws suffixes from a per-second counter in Redis, which
// makes numbers unique across server instances.
type RedisReceipts struct {
	client redis.Cmdable
	prefix string
}

// NewRedisReceipts builds a numberer on client. Keys are "<prefix>:<unix>".
func NewRedisReceipts(client redis.Cmdable, prefix string) *RedisReceipts {
	if prefix == "" {
		prefix = "ledger:receipt"
	}
	return &RedisReceipts{client: client, prefix: prefix}
}

// Next increments the counter for at's second. The key expires shortly after
// the second has passed.
func (r *RedisReceipts) Next(ctx context.Context, at time.Time) (string, error) {
	key := fmt.Sprintf("%s:%d", r.prefix, at.Unix())

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("receipt sequence: %w", err)
	}

	n := int(incr.Val())
	suffix := minReceiptSuffix + n - 1
	if suffix > maxReceiptSuffix {
		return "", fmt.Errorf("receipt sequence: exhausted for second %d", at.Unix())
	}
	return FormatReceiptNumber(at, suffix), nil
}
