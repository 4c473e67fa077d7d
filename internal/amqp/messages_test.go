package amqp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransactionEvent(t *testing.T) {
	msg := NewTransactionEvent("tx-42", ActionCreated)

	assert.Equal(t, "tx-42", msg.ID)
	assert.Equal(t, ActionCreated, msg.Action)
	assert.False(t, msg.Timestamp.IsZero())
	assert.LessOrEqual(t, time.Since(msg.Timestamp), time.Second)
}

func TestTransactionEventJSONRoundTrip(t *testing.T) {
	msg := &TransactionEventMessage{
		ID:        "tx-1",
		Action:    ActionDeleted,
		Timestamp: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
	}

	body, err := msg.ToJSON()
	require.NoError(t, err)

	parsed, err := TransactionEventFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, parsed.ID)
	assert.Equal(t, msg.Action, parsed.Action)
	assert.True(t, parsed.Timestamp.Equal(msg.Timestamp))
}

func TestTransactionEventFromInvalidJSON(t *testing.T) {
	_, err := TransactionEventFromJSON([]byte(`{"id": 42`))
	assert.Error(t, err)
}
