package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"prevplan/internal/plans/models"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	p.records = append(p.records, rs...)
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func TestKafkaSinkPublish(t *testing.T) {
	t.Run("writes keyed record with kind headers", func(t *testing.T) {
		p := &fakeProducer{}
		sink := NewKafkaSink(p, "prevplan.lifecycle")

		err := sink.Publish(context.Background(), Event{Kind: models.KindPlan, Action: models.ActionUpdate, ID: "plan-1"})
		require.NoError(t, err)
		require.Len(t, p.records, 1)

		rec := p.records[0]
		assert.Equal(t, "prevplan.lifecycle", rec.Topic)
		assert.Equal(t, []byte("plan-1"), rec.Key)
		assert.Contains(t, rec.Headers, kgo.RecordHeader{Key: "kind", Value: []byte("plan")})

		var got Event
		require.NoError(t, json.Unmarshal(rec.Value, &got))
		assert.Equal(t, models.ActionUpdate, got.Action)
	})

	t.Run("surfaces produce errors", func(t *testing.T) {
		boom := errors.New("not enough replicas")
		sink := NewKafkaSink(&fakeProducer{err: boom}, "t")
		err := sink.Publish(context.Background(), Event{Kind: models.KindPlan, ID: "p"})
		require.ErrorIs(t, err, boom)
	})
}
