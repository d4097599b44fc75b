package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "prevplan/pkg/domain"
	dErrors "prevplan/pkg/domain-errors"
	"prevplan/pkg/platform/sentinel"
	txctx "prevplan/pkg/platform/tx"
)

type stubLocker struct {
	err    error
	locked []id.PlanID
	inTx   bool
}

func (l *stubLocker) LockPlan(ctx context.Context, planID id.PlanID) error {
	_, l.inTx = txctx.From(ctx)
	l.locked = append(l.locked, planID)
	return l.err
}

func TestPlanPostgresTx(t *testing.T) {
	t.Run("locks the plan and commits", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectCommit()

		locker := &stubLocker{}
		planID := id.NewPlanID()
		var sawTx bool
		err = newPlanPostgresTx(db, locker, 0).RunInTx(context.Background(), planID, func(ctx context.Context) error {
			_, sawTx = txctx.From(ctx)
			return nil
		})
		require.NoError(t, err)
		assert.True(t, sawTx)
		assert.True(t, locker.inTx)
		assert.Equal(t, []id.PlanID{planID}, locker.locked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing plan still runs fn", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectRollback()

		notFound := dErrors.New(dErrors.CodeNotFound, "plan not found")
		locker := &stubLocker{err: fmt.Errorf("lock plan: %w", sentinel.ErrNotFound)}
		err = newPlanPostgresTx(db, locker, 0).RunInTx(context.Background(), id.NewPlanID(), func(context.Context) error {
			return notFound
		})
		assert.Same(t, notFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lock failure is internal and skips fn", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectRollback()

		ran := false
		locker := &stubLocker{err: errors.New("connection reset")}
		err = newPlanPostgresTx(db, locker, 0).RunInTx(context.Background(), id.NewPlanID(), func(context.Context) error {
			ran = true
			return nil
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
		assert.False(t, ran)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cancelled context never begins", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err = newPlanPostgresTx(db, &stubLocker{}, 0).RunInTx(ctx, id.NewPlanID(), func(context.Context) error { return nil })
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
