package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEncodeDecode(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	body, err := Encode(TypeResultCreated, ResultCreated{ResultID: "r1", UserID: "u1", QuizID: "q1", Score: 75, CompletedAt: at}, at)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"type":"quiz.result.created"`)

	e, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, TypeResultCreated, e.Type)
	assert.True(t, e.OccurredAt.Equal(at))

	p, err := e.ResultCreatedPayload()
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, 75, p.Score)
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
	_, err = Decode([]byte(`{"payload": {}}`))
	assert.Error(t, err)

	_, err = Event{Type: "other"}.ResultCreatedPayload()
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), TypeResultCreated, nil))
	assert.NoError(t, p.Close())
}

type fakeAck struct {
	acked, nacked int
	requeued      bool
}

func (f *fakeAck) Ack(tag uint64, multiple bool) error { f.acked++; return nil }
func (f *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked++
	f.requeued = f.requeued || requeue
	return nil
}
func (f *fakeAck) Reject(tag uint64, requeue bool) error { f.nacked++; return nil }

func TestConsumerHandle(t *testing.T) {
	c := &Consumer{logger: zap.NewNop()}
	good, err := Encode(TypeResultCreated, ResultCreated{UserID: "u1"}, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name      string
		body      []byte
		handler   Handler
		wantAck   int
		wantNack  int
		wantCalls int
	}{
		{"handled", good, func(context.Context, Event) error { return nil }, 1, 0, 1},
		{"handler error", good, func(context.Context, Event) error { return errors.New("boom") }, 0, 1, 1},
		{"garbage", []byte("{"), func(context.Context, Event) error { return nil }, 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}
			calls := 0
			h := func(ctx context.Context, e Event) error {
				calls++
				return tt.handler(ctx, e)
			}
			c.handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: tt.body}, h)
			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, tt.wantNack, ack.nacked)
			assert.False(t, ack.requeued)
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}
