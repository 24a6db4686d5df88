// Package indextest builds synthetic chains and serves them as a block source.
package indextest

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Builder mints transactions and blocks that never share a hash.
type Builder struct {
	nonce uint32
}

// Coinbase returns a coinbase transaction paying values.
func (b *Builder) Coinbase(values ...int64) *wire.MsgTx {
	b.nonce++
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: math.MaxUint32},
		SignatureScript:  binary.LittleEndian.AppendUint32(nil, b.nonce),
		Sequence:         wire.MaxTxInSequenceNum,
	})
	for _, v := range values {
		tx.AddTxOut(wire.NewTxOut(v, nil))
	}
	return tx
}

// Spend returns a transaction spending inputs into outputs of values.
func Spend(inputs []wire.OutPoint, values ...int64) *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	for i := range inputs {
		tx.AddTxIn(wire.NewTxIn(&inputs[i], nil, nil))
	}
	for _, v := range values {
		tx.AddTxOut(wire.NewTxOut(v, nil))
	}
	return tx
}

func (b *Builder) Block(parent chainhash.Hash, txs ...*wire.MsgTx) *wire.MsgBlock {
	b.nonce++
	utilTxs := make([]*btcutil.Tx, 0, len(txs))
	for _, tx := range txs {
		utilTxs = append(utilTxs, btcutil.NewTx(tx))
	}
	header := &wire.BlockHeader{
		Version:   1,
		PrevBlock: parent,
		Timestamp: time.Unix(1231006505+int64(b.nonce)*600, 0),
		Bits:      0x207fffff,
		Nonce:     b.nonce,
	}
	if len(utilTxs) > 0 {
		header.MerkleRoot = blockchain.CalcMerkleRoot(utilTxs, false)
	}
	block := wire.NewMsgBlock(header)
	for _, tx := range txs {
		_ = block.AddTransaction(tx)
	}
	return block
}

// Chain mines blocks from..to on parent, each paying subsidy(height) to a single output.
func (b *Builder) Chain(parent chainhash.Hash, subsidy func(uint32) uint64, from, to uint32) []*wire.MsgBlock {
	var blocks []*wire.MsgBlock
	for height := from; height <= to; height++ {
		block := b.Block(parent, b.Coinbase(int64(subsidy(height))))
		blocks = append(blocks, block)
		parent = block.BlockHash()
	}
	return blocks
}

func Outpoint(tx *wire.MsgTx, index uint32) wire.OutPoint {
	return wire.OutPoint{Hash: tx.TxHash(), Index: index}
}

// Source serves a chain the way a node's rpc does. Blocks of replaced chains
// stay fetchable by hash.
type Source struct {
	mu       sync.Mutex
	chain    []*wire.MsgBlock
	byHash   map[chainhash.Hash]*wire.MsgBlock
	failures map[int64]int
}

func NewSource(chain []*wire.MsgBlock) *Source {
	s := &Source{byHash: map[chainhash.Hash]*wire.MsgBlock{}, failures: map[int64]int{}}
	s.SetChain(chain)
	return s
}

// SetChain replaces the active chain.
func (s *Source) SetChain(chain []*wire.MsgBlock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain = chain
	for _, block := range chain {
		s.byHash[block.BlockHash()] = block
	}
}

// Fail makes the next n GetBlockHash calls for height fail.
func (s *Source) Fail(height int64, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[height] = n
}

// Failures returns the failures still pending for height.
func (s *Source) Failures(height int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[height]
}

func (s *Source) GetBlockCount() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.chain)) - 1, nil
}

func (s *Source) GetBlockHash(height int64) (*chainhash.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures[height] > 0 {
		s.failures[height]--
		return nil, errors.New("connection refused")
	}
	if height < 0 || height >= int64(len(s.chain)) {
		return nil, errors.New("block height out of range")
	}
	hash := s.chain[height].BlockHash()
	return &hash, nil
}

func (s *Source) GetBlock(hash *chainhash.Hash) (*wire.MsgBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	block, ok := s.byHash[*hash]
	if !ok {
		return nil, errors.New("block not found")
	}
	return block, nil
}
