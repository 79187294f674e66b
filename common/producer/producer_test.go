package producer

import (
	"context"
	"testing"

	"github.com/juju/errors"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type writerMock struct {
	mock.Mock
}

func (m *writerMock) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func TestKafkaProducer_Push(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		w := new(writerMock)
		w.On("WriteMessages", ctx, []kafka.Message{{
			Topic: "user.progress.update",
			Value: []byte(`{"partnerId":"p1","progress":40}`),
		}}).Return(nil)

		p := NewProducer(w)
		err := p.Push(ctx, "user.progress.update", map[string]any{"partnerId": "p1", "progress": 40})

		require.NoError(t, err)
		w.AssertExpectations(t)
	})

	t.Run("failure_no_topic", func(t *testing.T) {
		w := new(writerMock)

		err := NewProducer(w).Push(ctx, "", map[string]any{})

		assert.True(t, errors.Is(err, ErrNoTopic))
		w.AssertNotCalled(t, "WriteMessages")
	})

	t.Run("failure_writer", func(t *testing.T) {
		w := new(writerMock)
		w.On("WriteMessages", ctx, mock.Anything).Return(errors.New("kafka: leader not available"))

		err := NewProducer(w).Push(ctx, "user.progress.update", map[string]any{"a": 1})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "user.progress.update")
	})

	t.Run("failure_unencodable", func(t *testing.T) {
		w := new(writerMock)

		err := NewProducer(w).Push(ctx, "user.progress.update", map[string]any{"ch": make(chan int)})

		assert.Error(t, err)
		w.AssertNotCalled(t, "WriteMessages")
	})
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}

	require.NoError(t, r.Push(context.Background(), "topic-a", map[string]string{"k": "v"}))
	assert.Equal(t, 1, r.Count())
	assert.JSONEq(t, `{"k":"v"}`, string(r.Messages[0].Document))
	assert.Equal(t, "topic-a", r.Messages[0].Topic)
}
