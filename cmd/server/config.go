package main

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type config struct {
	LogFormat   string `default:"json" split_words:"true"`
	Port        int64  `default:"8080"`
	MetricsPort string `default:"9090" split_words:"true"`

	Postgres postgres
	Redis    redis
	Rpc      rpc

	Blockchair upstream
	Mempool    upstream
	Quotes     upstream
	Limits     upstream
	Orders     upstream
	Exchange   upstream
	Signer     upstream

	FeeRateTTL time.Duration `default:"30s" split_words:"true"`
	LimitsTTL  time.Duration `default:"1m" split_words:"true"`

	TrackDelay time.Duration `default:"1m" split_words:"true"`
}

type postgres struct {
	DSN string
}

type redis struct {
	Host     string `default:"localhost"`
	Port     string `default:"6379"`
	User     string
	Password string
	DB       int
}

type rpc struct {
	Ethereum rpcItem
}

type rpcItem struct {
	URL string
}

type upstream struct {
	URL string
}

func newConfig() (config, error) {
	var cfg config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	return cfg, nil
}
