package tables

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/wire"
)

var ErrInvalidRecord = errors.New("invalid record")

const outpointSatRangeHeaderSize = 9

// OutpointSatRange is the range list of one output, spent or not.
type OutpointSatRange struct {
	Id          uint64    `gorm:"column:id;primary_key;AUTO_INCREMENT;NOT NULL"`
	Outpoint    string    `gorm:"column:outpoint;type:varchar(80);uniqueIndex:uk_outpoint;NOT NULL"`
	SatRange    []byte    `gorm:"column:sat_range;type:longblob;NOT NULL"`
	Height      uint32    `gorm:"column:height;type:int unsigned;default:0;NOT NULL;comment:height the output was created at"`
	Spent       bool      `gorm:"column:spent;type:tinyint(1);default:0;NOT NULL"`
	SpentHeight uint32    `gorm:"column:spent_height;type:int unsigned;default:0;NOT NULL"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;default:CURRENT_TIMESTAMP;NOT NULL"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:timestamp;default:CURRENT_TIMESTAMP;NOT NULL"`
}

func (o *OutpointSatRange) TableName() string {
	return "outpoint_sat_range"
}

func NewOutpointSatRange(outpoint wire.OutPoint, ranges SatRanges, height uint32) *OutpointSatRange {
	return &OutpointSatRange{
		Outpoint: outpoint.String(),
		SatRange: ranges.Store(),
		Height:   height,
	}
}

func (o *OutpointSatRange) WireOutpoint() (*wire.OutPoint, error) {
	return wire.NewOutPointFromString(o.Outpoint)
}

func (o *OutpointSatRange) SatRanges() (SatRanges, error) {
	return NewSatRanges(o.SatRange)
}

// MarshalBinary encodes everything but the outpoint, which keys the record.
func (o *OutpointSatRange) MarshalBinary() ([]byte, error) {
	res := make([]byte, outpointSatRangeHeaderSize, outpointSatRangeHeaderSize+len(o.SatRange))
	if o.Spent {
		res[0] = 1
	}
	binary.BigEndian.PutUint32(res[1:5], o.Height)
	binary.BigEndian.PutUint32(res[5:9], o.SpentHeight)
	return append(res, o.SatRange...), nil
}

func (o *OutpointSatRange) UnmarshalBinary(data []byte) error {
	if len(data) < outpointSatRangeHeaderSize || data[0] > 1 {
		return fmt.Errorf("%w: outpoint sat range of %d bytes", ErrInvalidRecord, len(data))
	}
	o.Spent = data[0] == 1
	o.Height = binary.BigEndian.Uint32(data[1:5])
	o.SpentHeight = binary.BigEndian.Uint32(data[5:9])
	o.SatRange = append([]byte(nil), data[outpointSatRangeHeaderSize:]...)
	return nil
}
