package main

import (
	"context"
	"net"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/sailwallet/txengine/internal/balance"
	"github.com/sailwallet/txengine/internal/blockchair"
	"github.com/sailwallet/txengine/internal/coinselect"
	"github.com/sailwallet/txengine/internal/engine"
	"github.com/sailwallet/txengine/internal/evm"
	"github.com/sailwallet/txengine/internal/feerate"
	"github.com/sailwallet/txengine/internal/graceful"
	"github.com/sailwallet/txengine/internal/limits"
	"github.com/sailwallet/txengine/internal/logging"
	"github.com/sailwallet/txengine/internal/metrics"
	"github.com/sailwallet/txengine/internal/money"
	"github.com/sailwallet/txengine/internal/orders"
	"github.com/sailwallet/txengine/internal/quote"
	"github.com/sailwallet/txengine/internal/server"
	"github.com/sailwallet/txengine/internal/signer"
	"github.com/sailwallet/txengine/internal/tracker"
	"github.com/sailwallet/txengine/internal/txsize"
	"github.com/sailwallet/txengine/internal/txstore"
	"github.com/sailwallet/txengine/internal/utxo"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := newConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewLogger(cfg.LogFormat)

	metrics.RegisterMetrics([]string{"http", "engine"}, logger)
	metricsServer := metrics.StartMetricsServer(cfg.MetricsPort, logger)
	defer func() {
		if err := metricsServer.Stop(ctx); err != nil {
			logger.Errorf("failed to stop metrics server: %v", err)
		}
	}()

	pgPool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatalf("failed to initialize Postgres pool: %v", err)
	}
	store := txstore.NewStore(pgPool)
	if err := store.Migrate(ctx); err != nil {
		logger.Fatalf("failed to migrate: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		Username: cfg.Redis.User,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	enqueuer := tracker.NewEnqueuer(asynqClient, cfg.TrackDelay)

	bc := blockchair.NewClient(cfg.Blockchair.URL)
	feeRates := feerate.NewCachedProvider(feerate.NewClient(cfg.Mempool.URL), cfg.FeeRateTTL)

	rpc, err := ethclient.Dial(cfg.Rpc.Ethereum.URL)
	if err != nil {
		logger.Fatalf("failed to dial Ethereum RPC: %v", err)
	}

	utxoSubmit := utxo.NewSubmitService(
		logger,
		utxo.NewSendService(),
		signer.NewUTXOClient(cfg.Signer.URL),
		bc,
	)
	evmSubmit := evm.NewSubmitService(logger, rpc, signer.NewEVMClient(cfg.Signer.URL))

	estimator := txsize.NewEstimator()
	deps := engine.Dependencies{
		Logger: logger,

		Balances: balance.NewRouter(
			bc,
			evm.NewBalanceService(rpc),
			balance.NewCustodialClient(cfg.Exchange.URL),
		),
		Unspents:    bc,
		FeeRates:    feeRates,
		AccountFees: evm.NewFeeService(rpc),
		Quotes:      quote.NewClient(cfg.Quotes.URL),
		Limits:      limits.NewCachedProvider(limits.NewClient(cfg.Limits.URL), cfg.LimitsTTL),
		Orders:      orders.NewClient(logger, cfg.Orders.URL),

		UTXOSubmit:    utxoSubmit,
		AccountSubmit: evmSubmit,

		Selector:  coinselect.NewSelector(estimator),
		Estimator: estimator,

		Fiat: money.USD,
	}

	srv, err := server.NewServer(logger, cfg.Port, deps, store, enqueuer)
	if err != nil {
		logger.Fatalf("failed to create server: %v", err)
	}

	go func() {
		if err := srv.Run(ctx); err != nil {
			logger.Errorf("server stopped: %v", err)
			cancel()
		}
	}()

	sig := graceful.WaitForSignal()
	logger.WithField("signal", sig.String()).Info("shutting down")

	if err := srv.Stop(ctx); err != nil {
		logger.Errorf("failed to stop server: %v", err)
	}
	asynqClient.Close()
	pgPool.Close()
}
