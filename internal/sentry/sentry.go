// Package sentry reports panics of the long running goroutines.
package sentry

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/inscription-c/ordinals/constants"
)

const flushTimeout = 2 * time.Second

// Init configures the global hub. An empty dsn leaves reporting disabled.
func Init(dsn, environment string, tracesSampleRate float64) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          constants.AppName + "@" + constants.Version,
		EnableTracing:    tracesSampleRate > 0,
		TracesSampleRate: tracesSampleRate,
	})
}

// RecoverPanic reports a panic and re-raises it. Call it deferred.
func RecoverPanic() {
	if err := recover(); err != nil {
		sentry.CurrentHub().Recover(err)
		sentry.Flush(flushTimeout)
		panic(err)
	}
}

// Flush waits for buffered events before exit.
func Flush() {
	sentry.Flush(flushTimeout)
}
