// Package client talks to the index api.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/inscription-c/ordinals/index/model"
	"github.com/inscription-c/ordinals/index/tables"
	"github.com/inscription-c/ordinals/ordinal"
	"github.com/inscription-c/ordinals/server/handle/api"
)

type Options struct {
	httpClient      *http.Client
	maxRetries      uint64
	initialInterval time.Duration
}

type Option func(*Options)

func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) {
		o.httpClient = c
	}
}

// WithRetries retries failed requests n times, starting at interval and
// backing off exponentially.
func WithRetries(n uint64, interval time.Duration) Option {
	return func(o *Options) {
		o.maxRetries = n
		o.initialInterval = interval
	}
}

// APIError is a response the server answered with a non-zero err_no.
type APIError struct {
	Status int
	Code   api.Code
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("index api: %d %s (err_no %d)", e.Status, e.Msg, e.Code)
}

type Client struct {
	url  string
	opts *Options
}

func New(indexUrl string, opts ...Option) *Client {
	c := &Client{
		url: strings.TrimSuffix(indexUrl, "/"),
		opts: &Options{
			httpClient:      http.DefaultClient,
			maxRetries:      3,
			initialInterval: time.Second,
		},
	}
	for _, v := range opts {
		v(c.opts)
	}
	return c
}

type Output struct {
	*model.Output
	ValueBtc string `json:"value_btc"`
}

type SatPoint struct {
	SatPoint string        `json:"satpoint"`
	Sat      *ordinal.Info `json:"sat"`
}

type Status struct {
	Network    string                          `json:"network"`
	State      string                          `json:"state"`
	Height     *uint32                         `json:"height"`
	Hash       string                          `json:"hash,omitempty"`
	Halted     string                          `json:"halted,omitempty"`
	Statistics map[tables.StatisticType]uint64 `json:"statistics"`
}

func (c *Client) Status(ctx context.Context) (*Status, error) {
	status := &Status{}
	if err := c.getJSON(ctx, "/status", status); err != nil {
		return nil, err
	}
	return status, nil
}

func (c *Client) BlockHeight(ctx context.Context) (uint32, error) {
	body, err := c.getText(ctx, "/blockheight")
	if err != nil {
		return 0, err
	}
	height, err := strconv.ParseUint(body, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse block height %q: %w", body, err)
	}
	return uint32(height), nil
}

func (c *Client) BlockHash(ctx context.Context, height uint32) (string, error) {
	return c.getText(ctx, "/blockhash/"+strconv.FormatUint(uint64(height), 10))
}

func (c *Client) Output(ctx context.Context, outpoint string) (*Output, error) {
	output := &Output{}
	if err := c.getJSON(ctx, "/output/"+url.PathEscape(outpoint), output); err != nil {
		return nil, err
	}
	return output, nil
}

// Sat looks up a sat in any notation the server accepts.
func (c *Client) Sat(ctx context.Context, sat string) (*ordinal.Info, error) {
	info := &ordinal.Info{}
	if err := c.getJSON(ctx, "/sat/"+url.PathEscape(sat), info); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *Client) SatPoint(ctx context.Context, satpoint string) (*SatPoint, error) {
	resp := &SatPoint{}
	if err := c.getJSON(ctx, "/satpoint/"+url.PathEscape(satpoint), resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, data interface{}) error {
	body, err := c.doRetry(ctx, path)
	if err != nil {
		return err
	}
	resp := &api.Resp{Data: data}
	if err := json.Unmarshal(body, resp); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if resp.ErrNo != api.CodeSuccess {
		return &APIError{Status: http.StatusOK, Code: resp.ErrNo, Msg: resp.ErrMsg}
	}
	return nil
}

func (c *Client) getText(ctx context.Context, path string) (string, error) {
	body, err := c.doRetry(ctx, path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// doRetry retries transport failures and 5xx answers. Other error answers
// are returned at once.
func (c *Client) doRetry(ctx context.Context, path string) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.opts.maxRetries), ctx)

	var body []byte
	err := backoff.Retry(func() error {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+path, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.opts.httpClient.Do(request)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			apiErr := &APIError{Status: resp.StatusCode, Msg: http.StatusText(resp.StatusCode)}
			errResp := &api.Resp{}
			if json.Unmarshal(data, errResp) == nil && errResp.ErrMsg != "" {
				apiErr.Code = errResp.ErrNo
				apiErr.Msg = errResp.ErrMsg
			}
			if resp.StatusCode >= http.StatusInternalServerError {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}
		body = data
		return nil
	}, policy)
	if err != nil {
		return nil, err
	}
	return body, nil
}
