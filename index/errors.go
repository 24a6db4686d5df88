package index

import (
	"errors"
	"fmt"
)

// Kind classifies ingestion failures.
type Kind uint8

const (
	// KindConsensus is a block or transaction the index cannot accept.
	KindConsensus Kind = iota + 1
	// KindConsistency is a broken internal invariant, such as a range length mismatch.
	KindConsistency
	// KindStorage is a failure of the backing store.
	KindStorage
	// KindReorg is a reorg the index cannot resolve on its own.
	KindReorg
)

func (k Kind) String() string {
	switch k {
	case KindConsensus:
		return "consensus"
	case KindConsistency:
		return "consistency"
	case KindStorage:
		return "storage"
	case KindReorg:
		return "reorg"
	default:
		return "unknown"
	}
}

var (
	ErrIndexEmpty          = errors.New("index is empty")
	ErrOutputNotFound      = errors.New("output not found")
	ErrBlockNotFound       = errors.New("block not found")
	ErrBlockAlreadyIndexed = errors.New("block already indexed")
	ErrHeightGap           = errors.New("block height does not follow the index height")
	ErrMalformedBlock      = errors.New("malformed block")
	ErrUnknownOutput       = errors.New("input spends an unknown or spent output")
	ErrOutputsExceedInputs = errors.New("transaction outputs exceed its inputs")
	ErrCoinbaseOverclaim   = errors.New("coinbase outputs exceed subsidy and fees")
	ErrRangeMismatch       = errors.New("assigned sats do not match output value")
	ErrReorgTooDeep        = errors.New("reorg deeper than the undo window")
	ErrConfigMismatch      = errors.New("index was built with different settings")
	ErrNoBlockSource       = errors.New("no block source configured")
)

// Error is an ingestion failure at one height. The store is left at the
// last committed height.
type Error struct {
	Kind   Kind
	Height uint32
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error at height %d: %v", e.Kind, e.Height, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, height uint32, err error) *Error {
	return &Error{Kind: kind, Height: height, Err: err}
}

// IsKind reports whether err is an ingestion Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// ReorgError reports that stale blocks were rolled back and the block source
// must continue from ResumeHeight on its current chain.
type ReorgError struct {
	ResumeHeight uint32
	RolledBack   uint32
}

func (e *ReorgError) Error() string {
	return fmt.Sprintf("reorg: rolled back %d blocks, resume at height %d", e.RolledBack, e.ResumeHeight)
}
