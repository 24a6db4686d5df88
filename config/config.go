// Package config holds the settings of the srv process.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/go-playground/validator/v10"
	"github.com/gogf/gf/v2/util/gconv"
	"github.com/inscription-c/ordinals/constants"
	"gopkg.in/yaml.v2"
)

const (
	NetworkMainnet  = "mainnet"
	NetworkTestnet3 = "testnet3"
	NetworkRegtest  = "regtest"
	NetworkSignet   = "signet"
)

var SrvCfg = &SrvConfigs{}

// SrvConfigs is a struct that holds the configuration options for the server.
type SrvConfigs struct {
	Network string `yaml:"network" validate:"oneof=mainnet testnet3 regtest signet"`
	Chain   struct {
		Url        string `yaml:"url" validate:"required,hostname_port"`
		Username   string `yaml:"username"`
		Password   string `yaml:"password"`
		DisableTLS bool   `yaml:"disable_tls"`
	} `yaml:"chain"`
	DB struct {
		Driver  string `yaml:"driver" validate:"oneof=leveldb mysql"`
		DataDir string `yaml:"data_dir"`
		NoSync  bool   `yaml:"no_sync"`
		Mysql   struct {
			Addr     string `yaml:"addr"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DB       string `yaml:"db"`
		} `yaml:"mysql"`
	} `yaml:"db"`
	Index struct {
		// IndexSpentSats is "true" or "false"; empty means false.
		IndexSpentSats string `yaml:"index_spent_sats" validate:"omitempty,oneof=true false"`
		MaxReorgDepth  uint32 `yaml:"max_reorg_depth" validate:"gte=1"`
		PollInterval   string `yaml:"poll_interval"`
		FetchBatch     uint32 `yaml:"fetch_batch" validate:"gte=1,lte=1024"`
	} `yaml:"index"`
	Api struct {
		Listen      string `yaml:"listen" validate:"required_unless=NoApi true"`
		NoApi       bool   `yaml:"no_api"`
		EnablePProf bool   `yaml:"pprof"`
	} `yaml:"api"`
	Log struct {
		Level string `yaml:"level" validate:"oneof=trace debug info warn error critical off"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Sentry struct {
		Dsn              string  `yaml:"dsn"`
		TracesSampleRate float64 `yaml:"traces_sample_rate" validate:"gte=0,lte=1"`
	} `yaml:"sentry"`
}

// Load decodes the yaml file at path into c.
func (c *SrvConfigs) Load(path string) error {
	configFile, err := os.Open(path)
	if err != nil {
		return err
	}
	defer configFile.Close()
	if err := yaml.NewDecoder(configFile).Decode(c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

// SetDefaults fills every unset field from the network defaults.
func (c *SrvConfigs) SetDefaults() {
	if c.Network == "" {
		c.Network = NetworkMainnet
	}
	if c.Chain.Url == "" {
		c.Chain.Url = defaultRpcConnect[c.Network]
	}
	if c.DB.Driver == "" {
		c.DB.Driver = constants.DBDriverLevelDB
	}
	if c.DB.DataDir == "" {
		c.DB.DataDir = constants.DBDatDir(c.Network)
	}
	if c.DB.Mysql.DB == "" {
		c.DB.Mysql.DB = constants.DefaultDBName
	}
	if c.DB.Mysql.User == "" {
		c.DB.Mysql.User = constants.DefaultDBUser
	}
	if c.DB.Driver == constants.DBDriverMysql && c.DB.Mysql.Addr == "" {
		c.DB.Mysql.Addr = constants.DefaultDBAddr
	}
	if c.Index.MaxReorgDepth == 0 {
		c.Index.MaxReorgDepth = constants.DefaultMaxReorgDepth
	}
	if c.Index.PollInterval == "" {
		c.Index.PollInterval = constants.DefaultPollInterval
	}
	if c.Index.FetchBatch == 0 {
		c.Index.FetchBatch = constants.DefaultFetchBatch
	}
	if c.Api.Listen == "" {
		c.Api.Listen = defaultApiListen[c.Network]
	}
	if c.Log.Level == "" {
		c.Log.Level = constants.DefaultLogLevel
	}
	if c.Log.File == "" {
		c.Log.File = constants.LogFile(c.Network)
	}
}

func (c *SrvConfigs) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	interval, err := c.PollIntervalDuration()
	if err != nil {
		return err
	}
	if interval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.Index.PollInterval)
	}
	return nil
}

func (c *SrvConfigs) IndexSpentSats() bool {
	return gconv.Bool(c.Index.IndexSpentSats)
}

func (c *SrvConfigs) PollIntervalDuration() (time.Duration, error) {
	interval, err := time.ParseDuration(c.Index.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid poll_interval: %w", err)
	}
	return interval, nil
}

// NetParams returns the chain parameters of the configured network.
func (c *SrvConfigs) NetParams() (*chaincfg.Params, error) {
	switch c.Network {
	case NetworkMainnet:
		return &chaincfg.MainNetParams, nil
	case NetworkTestnet3:
		return &chaincfg.TestNet3Params, nil
	case NetworkRegtest:
		return &chaincfg.RegressionNetParams, nil
	case NetworkSignet:
		return &chaincfg.SigNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network %q", c.Network)
	}
}

var (
	defaultRpcConnect = map[string]string{
		NetworkMainnet:  "127.0.0.1:8332",
		NetworkTestnet3: "127.0.0.1:18332",
		NetworkRegtest:  "127.0.0.1:18443",
		NetworkSignet:   "127.0.0.1:38332",
	}
	defaultApiListen = map[string]string{
		NetworkMainnet:  constants.DefaultRpcListen,
		NetworkTestnet3: "127.0.0.1:18335",
		NetworkRegtest:  "127.0.0.1:28335",
		NetworkSignet:   "127.0.0.1:38335",
	}
)
