// Package handle serves the index over HTTP.
package handle

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inscription-c/ordinals/constants"
	"github.com/inscription-c/ordinals/index"
	"github.com/inscription-c/ordinals/internal/log"
	"github.com/inscription-c/ordinals/server/handle/middlewares"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	addr        string
	enablePProf bool
	engine      *gin.Engine
	idx         *index.Indexer
	halted      func() error
}

type Option func(*Options)

func WithAddr(addr string) func(*Options) {
	return func(options *Options) {
		options.addr = addr
	}
}

func WithEngine(g *gin.Engine) func(*Options) {
	return func(options *Options) {
		options.engine = g
	}
}

func WithIndex(idx *index.Indexer) func(*Options) {
	return func(options *Options) {
		options.idx = idx
	}
}

func WithEnablePProf(enablePProf bool) func(*Options) {
	return func(options *Options) {
		options.enablePProf = enablePProf
	}
}

// WithHalted reports the error that stopped indexing, if any, on /status.
func WithHalted(halted func() error) func(*Options) {
	return func(options *Options) {
		options.halted = halted
	}
}

type Handler struct {
	options *Options
	srv     *http.Server
}

func New(opts ...Option) (*Handler, error) {
	h := &Handler{}
	h.options = &Options{}
	for _, opt := range opts {
		opt(h.options)
	}
	if h.options.addr == "" {
		h.options.addr = constants.DefaultRpcListen
	}
	if h.options.idx == nil {
		return nil, errors.New("index is nil")
	}
	if h.options.halted == nil {
		h.options.halted = func() error { return nil }
	}
	if h.options.engine == nil {
		h.options.engine = gin.New()
		h.options.engine.Use(middlewares.Recovery(), middlewares.Logger())
	}
	h.InitRouter()
	return h, nil
}

func (h *Handler) Engine() *gin.Engine {
	return h.options.engine
}

func (h *Handler) Index() *index.Indexer {
	return h.options.idx
}

// Run serves in the background until Shutdown.
func (h *Handler) Run() {
	h.srv = &http.Server{
		Addr:              h.options.addr,
		Handler:           h.options.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Api.Infof("API listening on %s", h.options.addr)
		if err := h.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Api.Criticalf("srv.ListenAndServe: %v", err)
		}
	}()
}

func (h *Handler) Shutdown() {
	if h.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := h.srv.Shutdown(ctx); err != nil {
		log.Api.Errorf("srv.Shutdown: %v", err)
	}
}
