package service

import (
	"context"
	"sync"
	"time"

	id "prevplan/pkg/domain"
	dErrors "prevplan/pkg/domain-errors"
)

// PlanTx runs fn as one atomic unit with respect to other units on the same
// plan. Rescue and plan mutations resolve, validate and persist inside it so
// a rescue is checked against the balance that is stored when it commits.
type PlanTx interface {
	RunInTx(ctx context.Context, planID id.PlanID, fn func(ctx context.Context) error) error
}

// numPlanShards spreads plans over independent mutexes so unrelated plans
// rarely contend.
const numPlanShards = 128

// defaultPlanTxTimeout is the maximum duration for a plan transaction.
const defaultPlanTxTimeout = 5 * time.Second

// ShardedPlanTx serialises units per plan inside one process.
type ShardedPlanTx struct {
	shards  [numPlanShards]sync.Mutex
	timeout time.Duration
}

// NewShardedPlanTx builds a sharded lock. A zero timeout uses the default.
func NewShardedPlanTx(timeout time.Duration) *ShardedPlanTx {
	if timeout <= 0 {
		timeout = defaultPlanTxTimeout
	}
	return &ShardedPlanTx{timeout: timeout}
}

func (t *ShardedPlanTx) RunInTx(ctx context.Context, planID id.PlanID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	shard := &t.shards[shardFor(planID)]
	shard.Lock()
	defer shard.Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

// shardFor hashes the plan id with FNV-1a.
func shardFor(planID id.PlanID) int {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for _, b := range planID {
		h ^= uint32(b)
		h *= fnvPrime
	}
	return int(h % numPlanShards)
}
