package index

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/inscription-c/ordinals/index/tables"
)

var ErrInsufficientSats = errors.New("not enough sats queued")

// rangeQueue hands out sat ranges from the front, splitting the front range
// when a request ends inside it.
type rangeQueue struct {
	ranges []tables.SatRange
	head   int
	total  uint64
}

func newRangeQueue() *rangeQueue {
	return &rangeQueue{}
}

func (q *rangeQueue) push(ranges ...tables.SatRange) error {
	for _, satRange := range ranges {
		if err := satRange.Validate(); err != nil {
			return err
		}
		total, carry := bits.Add64(q.total, satRange.Len(), 0)
		if carry != 0 {
			return fmt.Errorf("%w: queued sats overflow", tables.ErrInvalidSatRange)
		}
		q.total = total
		q.ranges = append(q.ranges, satRange)
	}
	return nil
}

// Len returns the number of queued sats.
func (q *rangeQueue) Len() uint64 {
	return q.total
}

// take removes need sats from the front of the queue.
func (q *rangeQueue) take(need uint64) (tables.SatRanges, error) {
	if need > q.total {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientSats, need, q.total)
	}
	res := tables.SatRanges{}
	for need > 0 {
		front := q.ranges[q.head]
		if front.Len() > need {
			res = append(res, tables.SatRange{Start: front.Start, End: front.Start + need})
			q.ranges[q.head].Start += need
			q.total -= need
			break
		}
		res = append(res, front)
		q.head++
		q.total -= front.Len()
		need -= front.Len()
	}
	if q.head == len(q.ranges) {
		q.ranges = q.ranges[:0]
		q.head = 0
	}
	return res, nil
}

// drain removes and returns everything left in the queue.
func (q *rangeQueue) drain() tables.SatRanges {
	res := append(tables.SatRanges{}, q.ranges[q.head:]...)
	q.ranges = q.ranges[:0]
	q.head = 0
	q.total = 0
	return res
}
