package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	id "prevplan/pkg/domain"
	dErrors "prevplan/pkg/domain-errors"
	"prevplan/pkg/platform/sentinel"
	txctx "prevplan/pkg/platform/tx"
)

const defaultPlanTxTimeout = 5 * time.Second

// planLocker takes a row lock on a plan inside the caller's transaction.
type planLocker interface {
	LockPlan(ctx context.Context, planID id.PlanID) error
}

// planPostgresTx runs a unit in one database transaction holding the plan
// row lock, so concurrent rescues and plan updates on one plan serialise
// across processes.
type planPostgresTx struct {
	db      *sql.DB
	locker  planLocker
	timeout time.Duration
}

func newPlanPostgresTx(db *sql.DB, locker planLocker, timeout time.Duration) *planPostgresTx {
	return &planPostgresTx{db: db, locker: locker, timeout: timeout}
}

func (t *planPostgresTx) RunInTx(ctx context.Context, planID id.PlanID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultPlanTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()
	ctx = txctx.WithTx(ctx, tx)

	// A missing plan is reported by the resolver inside fn.
	if err := t.locker.LockPlan(ctx, planID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock plan")
	}

	if err := fn(ctx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit transaction")
	}
	return nil
}
