package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/sailwallet/txengine/internal/asset"
)

const (
	// TypeTrackTransaction is the asynq task type for confirmation
	// polling.
	TypeTrackTransaction = "tx:track"

	// QueueName is the asynq queue the tracker consumes.
	QueueName = "tracker"
)

// Payload is the task body for a tracked transaction.
type Payload struct {
	RecordID    uuid.UUID   `json:"record_id"`
	Chain       asset.Chain `json:"chain"`
	TxHash      string      `json:"tx_hash"`
	BroadcastAt time.Time   `json:"broadcast_at"`
}

// Enqueuer schedules confirmation polling for broadcast transactions.
type Enqueuer struct {
	client *asynq.Client
	delay  time.Duration
}

func NewEnqueuer(client *asynq.Client, delay time.Duration) *Enqueuer {
	return &Enqueuer{client: client, delay: delay}
}

// Track schedules the first confirmation check for a transaction.
func (e *Enqueuer) Track(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = e.client.EnqueueContext(
		ctx,
		asynq.NewTask(TypeTrackTransaction, body),
		asynq.Queue(QueueName),
		asynq.ProcessIn(e.delay),
		asynq.MaxRetry(0),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue track task: %w", err)
	}
	return nil
}
