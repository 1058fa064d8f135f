package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/metrics"
	"github.com/sailwallet/txengine/internal/txstore"
)

// ConfirmationSource reports the confirmation depth of a transaction.
type ConfirmationSource interface {
	TxConfirmations(ctx context.Context, chain asset.Chain, txHash string) (uint32, error)
}

// Consumer polls broadcast transactions until they reach the required
// confirmation depth, then marks the stored record confirmed.
type Consumer struct {
	logger   *logrus.Logger
	store    *txstore.Store
	sources  map[asset.Chain]ConfirmationSource
	enqueuer *Enqueuer
	sd       *statsd.Client

	required   uint32
	maxTracked time.Duration
}

func NewConsumer(
	logger *logrus.Logger,
	store *txstore.Store,
	sources map[asset.Chain]ConfirmationSource,
	enqueuer *Enqueuer,
	sd *statsd.Client,
	required uint32,
	maxTracked time.Duration,
) *Consumer {
	return &Consumer{
		logger:     logger,
		store:      store,
		sources:    sources,
		enqueuer:   enqueuer,
		sd:         sd,
		required:   required,
		maxTracked: maxTracked,
	}
}

type unconfirmedLister interface {
	ListUnconfirmed(ctx context.Context, limit int) ([]txstore.Record, error)
}

type trackScheduler interface {
	Track(ctx context.Context, p Payload) error
}

// Resync re-enqueues confirmation polling for records that were still
// unconfirmed when the worker last stopped, oldest first. Returns the
// number of records re-enqueued.
func Resync(ctx context.Context, store unconfirmedLister, scheduler trackScheduler, limit int) (int, error) {
	recs, err := store.ListUnconfirmed(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list unconfirmed transactions: %w", err)
	}

	for i, rec := range recs {
		p := Payload{
			RecordID:    rec.ID,
			Chain:       rec.Chain,
			TxHash:      rec.TxHash,
			BroadcastAt: rec.CreatedAt,
		}
		if er := scheduler.Track(ctx, p); er != nil {
			return i, fmt.Errorf("failed to re-enqueue %s: %w", rec.ID, er)
		}
	}
	return len(recs), nil
}

func (c *Consumer) handle(ctx context.Context, t *asynq.Task) error {
	var p Payload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal track payload: %w", err)
	}

	source, ok := c.sources[p.Chain]
	if !ok {
		return fmt.Errorf("no confirmation source for chain %s", p.Chain)
	}

	confirmations, err := source.TxConfirmations(ctx, p.Chain, p.TxHash)
	if err != nil {
		return fmt.Errorf("failed to get confirmations: %w", err)
	}

	log := c.logger.WithFields(logrus.Fields{
		"record_id":     p.RecordID,
		"chain":         p.Chain,
		"tx_hash":       p.TxHash,
		"confirmations": confirmations,
	})

	if confirmations >= c.required {
		if er := c.store.SetStatus(ctx, p.RecordID, txstore.StatusConfirmed); er != nil {
			return fmt.Errorf("failed to mark confirmed: %w", er)
		}
		age := time.Since(p.BroadcastAt)
		metrics.RecordConfirmation(p.Chain.String(), "confirmed", age)
		if c.sd != nil {
			_ = c.sd.Timing("tracker.confirmation", age, []string{"chain:" + p.Chain.String()}, 1)
		}
		log.Info("transaction confirmed")
		return nil
	}

	if time.Since(p.BroadcastAt) > c.maxTracked {
		if er := c.store.SetStatus(ctx, p.RecordID, txstore.StatusFailed); er != nil {
			return fmt.Errorf("failed to mark failed: %w", er)
		}
		metrics.RecordConfirmation(p.Chain.String(), "timed_out", time.Since(p.BroadcastAt))
		log.Warn("gave up tracking transaction")
		return nil
	}

	if confirmations > 0 {
		if er := c.store.SetStatus(ctx, p.RecordID, txstore.StatusPending); er != nil {
			return fmt.Errorf("failed to mark pending: %w", er)
		}
	}

	if er := c.enqueuer.Track(ctx, p); er != nil {
		return fmt.Errorf("failed to re-enqueue track task: %w", er)
	}
	log.Debug("transaction not yet confirmed, re-enqueued")
	return nil
}

func (c *Consumer) Handle(_ context.Context, t *asynq.Task) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := c.handle(ctx, t); err != nil {
		c.logger.WithError(err).Error("failed to handle track task")
		return asynq.SkipRetry
	}
	return nil
}
