package tables

var Tables = []interface{}{
	&BlockInfo{},
	&OutpointSatRange{},
	&Statistic{},
	&UndoLog{},
}
