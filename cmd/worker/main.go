package main

import (
	"context"
	"net"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/sailwallet/txengine/internal/asset"
	"github.com/sailwallet/txengine/internal/blockchair"
	"github.com/sailwallet/txengine/internal/evm"
	"github.com/sailwallet/txengine/internal/graceful"
	"github.com/sailwallet/txengine/internal/logging"
	"github.com/sailwallet/txengine/internal/metrics"
	"github.com/sailwallet/txengine/internal/tracker"
	"github.com/sailwallet/txengine/internal/txstore"
)

const resyncLimit = 500

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := newConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewLogger(cfg.LogFormat)

	metrics.RegisterMetrics([]string{"tracker"}, logger)
	metricsServer := metrics.StartMetricsServer(cfg.MetricsPort, logger)
	defer func() {
		if err := metricsServer.Stop(ctx); err != nil {
			logger.Errorf("failed to stop metrics server: %v", err)
		}
	}()

	sdClient, err := statsd.New(cfg.DataDog.Host + ":" + cfg.DataDog.Port)
	if err != nil {
		logger.Fatalf("failed to initialize StatsD client: %v", err)
	}

	pgPool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatalf("failed to initialize Postgres pool: %v", err)
	}
	store := txstore.NewStore(pgPool)
	if err := store.Migrate(ctx); err != nil {
		logger.Fatalf("failed to migrate: %v", err)
	}

	redisOptions := asynq.RedisClientOpt{
		Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Username: cfg.Redis.User,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	client := asynq.NewClient(redisOptions)
	consumer := asynq.NewServer(
		redisOptions,
		asynq.Config{
			Logger:      logger,
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				tracker.QueueName: 10,
			},
		},
	)

	bc := blockchair.NewClient(cfg.Blockchair.URL)

	rpc, err := ethclient.Dial(cfg.Rpc.Ethereum.URL)
	if err != nil {
		logger.Fatalf("failed to dial Ethereum RPC: %v", err)
	}

	sources := map[asset.Chain]tracker.ConfirmationSource{
		asset.Bitcoin:     bc,
		asset.BitcoinCash: bc,
		asset.Litecoin:    bc,
		asset.Dogecoin:    bc,
		asset.Ethereum:    evm.NewConfirmService(rpc),
	}

	enqueuer := tracker.NewEnqueuer(client, cfg.TrackDelay)
	trackConsumer := tracker.NewConsumer(
		logger,
		store,
		sources,
		enqueuer,
		sdClient,
		cfg.RequiredConfirmations,
		cfg.TrackMaxAge,
	)

	// Pick up transactions broadcast before the last shutdown.
	if n, err := tracker.Resync(ctx, store, enqueuer, resyncLimit); err != nil {
		logger.Errorf("failed to resync unconfirmed transactions: %v", err)
	} else if n > 0 {
		logger.WithField("count", n).Info("resynced unconfirmed transactions")
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(tracker.TypeTrackTransaction, trackConsumer.Handle)

	go func() {
		if err := consumer.Run(mux); err != nil {
			logger.Errorf("asynq server stopped: %v", err)
			cancel()
		}
	}()

	sig := graceful.WaitForSignal()
	logger.WithField("signal", sig.String()).Info("shutting down")

	consumer.Shutdown()
	client.Close()
	pgPool.Close()
}
