package main

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type config struct {
	LogFormat   string `default:"json" split_words:"true"`
	MetricsPort string `default:"9091" split_words:"true"`

	Postgres postgres
	Redis    redis
	Rpc      rpc

	Blockchair upstream
	DataDog    dataDog

	TrackDelay            time.Duration `default:"1m" split_words:"true"`
	TrackMaxAge           time.Duration `default:"24h" split_words:"true"`
	RequiredConfirmations uint32        `default:"1" split_words:"true"`
	Concurrency           int           `default:"10"`
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

type dataDog struct {
	Host string `default:"localhost"`
	Port string `default:"8125"`
}

func newConfig() (config, error) {
	var cfg config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	return cfg, nil
}
