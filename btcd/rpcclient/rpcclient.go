// Package rpcclient connects the index to a bitcoin node over JSON-RPC.
package rpcclient

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcrpc "github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
	"github.com/go-playground/validator/v10"
	"github.com/inscription-c/ordinals/internal/log"
	"github.com/inscription-c/ordinals/internal/metrics"
)

type clientOptions struct {
	Host     string `validate:"required,hostname_port"`
	User     string
	Password string
	// Network labels the client metrics.
	Network    string
	DisableTLS bool
}

type ClientOption func(*clientOptions)

// WithClientHost sets the host:port of the node.
func WithClientHost(host string) ClientOption {
	return func(o *clientOptions) {
		o.Host = host
	}
}

// WithClientUser sets the rpc username.
func WithClientUser(user string) ClientOption {
	return func(o *clientOptions) {
		o.User = user
	}
}

// WithClientPassword sets the rpc password.
func WithClientPassword(password string) ClientOption {
	return func(o *clientOptions) {
		o.Password = password
	}
}

func WithClientNetwork(network string) ClientOption {
	return func(o *clientOptions) {
		o.Network = network
	}
}

func WithClientDisableTLS(disableTLS bool) ClientOption {
	return func(o *clientOptions) {
		o.DisableTLS = disableTLS
	}
}

// Client is a node client that records a metric for every call the index makes.
type Client struct {
	*btcrpc.Client
	network string
}

// NewClient validates the options and creates an HTTP POST mode client.
func NewClient(optFns ...ClientOption) (*Client, error) {
	opts := &clientOptions{}
	for _, v := range optFns {
		v(opts)
	}
	if err := validator.New().Struct(opts); err != nil {
		return nil, err
	}
	connCfg := &btcrpc.ConnConfig{
		Host:         opts.Host,
		User:         opts.User,
		Pass:         opts.Password,
		HTTPPostMode: true,
		DisableTLS:   opts.DisableTLS,
	}
	cli, err := btcrpc.New(connCfg, nil)
	if err != nil {
		return nil, err
	}
	log.Rpc.Infof("Connected to node rpc %s", opts.Host)
	return &Client{Client: cli, network: opts.Network}, nil
}

func (c *Client) GetBlockCount() (int64, error) {
	started := time.Now()
	count, err := c.Client.GetBlockCount()
	metrics.ObserveRPC("getblockcount", c.network, err, started)
	return count, err
}

func (c *Client) GetBlockHash(height int64) (*chainhash.Hash, error) {
	started := time.Now()
	hash, err := c.Client.GetBlockHash(height)
	metrics.ObserveRPC("getblockhash", c.network, err, started)
	return hash, err
}

func (c *Client) GetBlock(hash *chainhash.Hash) (*wire.MsgBlock, error) {
	started := time.Now()
	block, err := c.Client.GetBlock(hash)
	metrics.ObserveRPC("getblock", c.network, err, started)
	return block, err
}

// Close shuts the client down and waits for in-flight requests.
func (c *Client) Close() {
	c.Client.Shutdown()
	c.Client.WaitForShutdown()
}
