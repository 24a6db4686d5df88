package tables

import (
	"bytes"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// BlockInfo is the watermark record of one indexed height.
type BlockInfo struct {
	Id        uint64    `gorm:"column:id;primary_key;AUTO_INCREMENT;NOT NULL"`
	Height    uint32    `gorm:"column:height;type:int unsigned;uniqueIndex:uk_height;default:0;NOT NULL"`
	Hash      string    `gorm:"column:hash;type:varchar(64);index:idx_hash;NOT NULL"`
	Header    []byte    `gorm:"column:header;type:blob;NOT NULL;comment:header"`
	Timestamp int64     `gorm:"column:timestamp;type:bigint;default:0;NOT NULL;comment:timestamp"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:CURRENT_TIMESTAMP;NOT NULL"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:CURRENT_TIMESTAMP;NOT NULL"`
}

func (b *BlockInfo) TableName() string {
	return "block_info"
}

func NewBlockInfo(height uint32, header *wire.BlockHeader) (*BlockInfo, error) {
	buf := bytes.NewBuffer(make([]byte, 0, wire.MaxBlockHeaderPayload))
	if err := header.Serialize(buf); err != nil {
		return nil, err
	}
	return &BlockInfo{
		Height:    height,
		Hash:      header.BlockHash().String(),
		Header:    buf.Bytes(),
		Timestamp: header.Timestamp.Unix(),
	}, nil
}

func (b *BlockInfo) LoadHeader() (*wire.BlockHeader, error) {
	h := &wire.BlockHeader{}
	if err := h.Deserialize(bytes.NewReader(b.Header)); err != nil {
		return nil, err
	}
	return h, nil
}

func (b *BlockInfo) BlockHash() (*chainhash.Hash, error) {
	return chainhash.NewHashFromStr(b.Hash)
}

// MarshalBinary encodes the header; height keys the record.
func (b *BlockInfo) MarshalBinary() ([]byte, error) {
	return append([]byte(nil), b.Header...), nil
}

func (b *BlockInfo) UnmarshalBinary(data []byte) error {
	b.Header = append([]byte(nil), data...)
	header, err := b.LoadHeader()
	if err != nil {
		return err
	}
	b.Hash = header.BlockHash().String()
	b.Timestamp = header.Timestamp.Unix()
	return nil
}
