package tables

import (
	"time"
)

type StatisticType string

const (
	StatisticCommits          StatisticType = "Commits"
	StatisticLostSats         StatisticType = "LostSats"
	StatisticOutputsTraversed StatisticType = "OutputsTraversed"
	StatisticSatRanges        StatisticType = "SatRanges"
	StatisticReorgs           StatisticType = "Reorgs"
	StatisticIndexSpentSats   StatisticType = "IndexSpentSats"
)

// Statistics lists every counter the index maintains.
var Statistics = []StatisticType{
	StatisticCommits,
	StatisticLostSats,
	StatisticOutputsTraversed,
	StatisticSatRanges,
	StatisticReorgs,
	StatisticIndexSpentSats,
}

type Statistic struct {
	Id        uint64        `gorm:"column:id;primary_key;AUTO_INCREMENT;NOT NULL"`
	Name      StatisticType `gorm:"column:name;type:varchar(255);uniqueIndex:uk_name;NOT NULL;comment:statistic name"`
	Count     uint64        `gorm:"column:count;type:bigint unsigned;default:0;NOT NULL;comment:count"`
	CreatedAt time.Time     `gorm:"column:created_at;type:timestamp;default:CURRENT_TIMESTAMP;NOT NULL"`
	UpdatedAt time.Time     `gorm:"column:updated_at;type:timestamp;default:CURRENT_TIMESTAMP;NOT NULL"`
}

func (s *Statistic) TableName() string {
	return "statistic"
}
