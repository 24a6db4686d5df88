// Package signal runs shutdown handlers, last registered first, on SIGINT or
// SIGTERM.
package signal

import (
	"os"
	"os/signal"
	"sync"

	"github.com/inscription-c/ordinals/internal/log"
)

var (
	interruptChannel  chan os.Signal
	addHandlerChannel = make(chan func())
	startOnce         sync.Once

	// InterruptHandlersDone is closed after all interrupt handlers ran.
	InterruptHandlersDone = make(chan struct{})

	simulateInterruptChannel = make(chan struct{}, 1)
)

// signals is extended with SIGTERM on unix.
var signals = []os.Signal{os.Interrupt}

// SimulateInterrupt runs the shutdown handlers as if SIGINT was received.
func SimulateInterrupt() {
	start()
	select {
	case simulateInterruptChannel <- struct{}{}:
	default:
	}
}

func mainInterruptHandler() {
	var interruptCallbacks []func()
	invokeCallbacks := func() {
		for i := len(interruptCallbacks) - 1; i >= 0; i-- {
			interruptCallbacks[i]()
		}
		close(InterruptHandlersDone)
	}

	for {
		select {
		case sig := <-interruptChannel:
			log.Srv.Infof("Received signal (%s). Shutting down...", sig)
			invokeCallbacks()
			return
		case <-simulateInterruptChannel:
			log.Srv.Info("Shutdown requested. Shutting down...")
			invokeCallbacks()
			return
		case handler := <-addHandlerChannel:
			interruptCallbacks = append(interruptCallbacks, handler)
		}
	}
}

func start() {
	startOnce.Do(func() {
		interruptChannel = make(chan os.Signal, 1)
		signal.Notify(interruptChannel, signals...)
		go mainInterruptHandler()
	})
}

// AddInterruptHandler registers handler to run on shutdown. Handlers added
// after shutdown started are dropped.
func AddInterruptHandler(handler func()) {
	start()
	select {
	case addHandlerChannel <- handler:
	case <-InterruptHandlersDone:
	}
}

// InterruptRequested reports whether the shutdown handlers already ran.
func InterruptRequested() bool {
	select {
	case <-InterruptHandlersDone:
		return true
	default:
		return false
	}
}
