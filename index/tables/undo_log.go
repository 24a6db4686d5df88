package tables

import (
	"time"

	"github.com/ugorji/go/codec"
)

var cborHandle = &codec.CborHandle{}

// UndoLog holds the encoded BlockUndo of one height.
type UndoLog struct {
	Id        uint64    `gorm:"column:id;primary_key;AUTO_INCREMENT;NOT NULL"`
	Height    uint32    `gorm:"column:height;type:int unsigned;uniqueIndex:uk_height;default:0;NOT NULL;comment:height of the block"`
	Data      []byte    `gorm:"column:data;type:longblob;NOT NULL;comment:cbor encoded block undo"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:CURRENT_TIMESTAMP;NOT NULL"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:CURRENT_TIMESTAMP;NOT NULL"`
}

func (b *UndoLog) TableName() string {
	return "undo_log"
}

// UndoEntry is the state of one outpoint before a block touched it.
type UndoEntry struct {
	Outpoint string `codec:"o"`
	Existed  bool   `codec:"e"`
	// Prior is the MarshalBinary form of the OutpointSatRange when Existed.
	Prior []byte `codec:"p"`
}

// BlockUndo is the inverse of one block's mutations.
type BlockUndo struct {
	Height     uint32                   `codec:"h"`
	Entries    []UndoEntry              `codec:"e"`
	Statistics map[StatisticType]uint64 `codec:"s"`
}

func NewUndoLog(undo *BlockUndo) (*UndoLog, error) {
	var data []byte
	if err := codec.NewEncoderBytes(&data, cborHandle).Encode(undo); err != nil {
		return nil, err
	}
	return &UndoLog{Height: undo.Height, Data: data}, nil
}

func (b *UndoLog) BlockUndo() (*BlockUndo, error) {
	undo := &BlockUndo{}
	if err := codec.NewDecoderBytes(b.Data, cborHandle).Decode(undo); err != nil {
		return nil, err
	}
	return undo, nil
}
