package dao

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btclog"
	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/inscription-c/ordinals/index/tables"
	gormMysqlDriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DB is the MySQL store backend.
type DB struct {
	*gorm.DB
}

type DBOptions struct {
	addr     string
	user     string
	password string
	dbName   string
	log      btclog.Logger
}

type DBOption func(*DBOptions)

// WithAddr sets the host:port of the MySQL server.
func WithAddr(addr string) DBOption {
	return func(o *DBOptions) {
		o.addr = addr
	}
}

func WithUser(user string) DBOption {
	return func(o *DBOptions) {
		o.user = user
	}
}

func WithPassword(password string) DBOption {
	return func(o *DBOptions) {
		o.password = password
	}
}

// WithDBName names the database; it is created on first connect.
func WithDBName(dbName string) DBOption {
	return func(o *DBOptions) {
		o.dbName = dbName
	}
}

// WithLogger routes gorm statements to log.
func WithLogger(log btclog.Logger) DBOption {
	return func(o *DBOptions) {
		o.log = log
	}
}

func (o *DBOptions) dsn(dbName string) string {
	cfg := mysqlDriver.NewConfig()
	cfg.User = o.user
	cfg.Passwd = o.password
	cfg.Net = "tcp"
	cfg.Addr = o.addr
	cfg.DBName = dbName
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// NewDB connects to MySQL, creates the database if needed and migrates the tables.
func NewDB(opts ...DBOption) (*DB, error) {
	options := &DBOptions{log: btclog.Disabled}
	for _, opt := range opts {
		opt(options)
	}
	if options.dbName == "" {
		return nil, errors.New("mysql database name is empty")
	}

	db, err := gorm.Open(gormMysqlDriver.Open(options.dsn("")), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}
	createDb := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`;", options.dbName)
	if err = db.Exec(createDb).Error; err != nil {
		return nil, fmt.Errorf("gorm create database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	db, err = gorm.Open(gormMysqlDriver.Open(options.dsn(options.dbName)), &gorm.Config{
		Logger: &GormLogger{Logger: options.log},
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}
	if err := db.AutoMigrate(tables.Tables...); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm db: %w", err)
	}
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(50)

	return &DB{
		DB: db,
	}, nil
}

// Snapshot opens a read-only repeatable-read transaction.
func (d *DB) Snapshot() (Reader, error) {
	tx := d.DB.Begin(&sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &dbReader{tx: tx}, nil
}

func (d *DB) NewBatch() Batch {
	return &dbBatch{db: d}
}

func (d *DB) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type dbReader struct {
	tx *gorm.DB
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *dbReader) BlockInfo(height uint32) (*tables.BlockInfo, error) {
	info := &tables.BlockInfo{}
	err := r.tx.Where("height = ?", height).First(info).Error
	if err != nil {
		return nil, notFound(err)
	}
	return info, nil
}

func (r *dbReader) LatestBlockInfo() (*tables.BlockInfo, error) {
	info := &tables.BlockInfo{}
	err := r.tx.Order("height desc").First(info).Error
	if err != nil {
		return nil, notFound(err)
	}
	return info, nil
}

func (r *dbReader) OutpointSatRange(outpoint wire.OutPoint) (*tables.OutpointSatRange, error) {
	record := &tables.OutpointSatRange{}
	err := r.tx.Where("outpoint = ?", outpoint.String()).First(record).Error
	if err != nil {
		return nil, notFound(err)
	}
	return record, nil
}

func (r *dbReader) UndoLog(height uint32) (*tables.UndoLog, error) {
	log := &tables.UndoLog{}
	err := r.tx.Where("height = ?", height).First(log).Error
	if err != nil {
		return nil, notFound(err)
	}
	return log, nil
}

func (r *dbReader) Statistic(name tables.StatisticType) (uint64, error) {
	statistic := &tables.Statistic{}
	err := r.tx.Where("name = ?", name).First(statistic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return statistic.Count, nil
}

func (r *dbReader) Release() {
	r.tx.Rollback()
}

// dbBatch replays its buffered statements inside one transaction on Commit.
type dbBatch struct {
	db  *DB
	ops []func(tx *gorm.DB) error
}

func (b *dbBatch) PutOutpointSatRange(outpoint wire.OutPoint, record *tables.OutpointSatRange) error {
	row := *record
	row.Id = 0
	row.Outpoint = outpoint.String()
	b.ops = append(b.ops, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "outpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"sat_range", "height", "spent", "spent_height", "updated_at"}),
		}).Create(&row).Error
	})
	return nil
}

func (b *dbBatch) DeleteOutpointSatRange(outpoint wire.OutPoint) {
	b.ops = append(b.ops, func(tx *gorm.DB) error {
		return tx.Where("outpoint = ?", outpoint.String()).Delete(&tables.OutpointSatRange{}).Error
	})
}

func (b *dbBatch) PutBlockInfo(info *tables.BlockInfo) error {
	row := *info
	row.Id = 0
	b.ops = append(b.ops, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "height"}},
			DoUpdates: clause.AssignmentColumns([]string{"hash", "header", "timestamp", "updated_at"}),
		}).Create(&row).Error
	})
	return nil
}

func (b *dbBatch) DeleteBlockInfo(height uint32) {
	b.ops = append(b.ops, func(tx *gorm.DB) error {
		return tx.Where("height = ?", height).Delete(&tables.BlockInfo{}).Error
	})
}

func (b *dbBatch) PutUndoLog(log *tables.UndoLog) {
	row := *log
	row.Id = 0
	b.ops = append(b.ops, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "height"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).Create(&row).Error
	})
}

func (b *dbBatch) DeleteUndoLog(height uint32) {
	b.ops = append(b.ops, func(tx *gorm.DB) error {
		return tx.Where("height = ?", height).Delete(&tables.UndoLog{}).Error
	})
}

func (b *dbBatch) SetStatistic(name tables.StatisticType, count uint64) {
	b.ops = append(b.ops, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"count", "updated_at"}),
		}).Create(&tables.Statistic{Name: name, Count: count}).Error
	})
}

func (b *dbBatch) Commit() error {
	ops := b.ops
	b.ops = nil
	return b.db.DB.Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			if err := op(tx); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *dbBatch) Discard() {
	b.ops = nil
}

// GormLogger adapts a btclog subsystem logger to gorm.
type GormLogger struct {
	btclog.Logger
}

func (g *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	switch level {
	case logger.Silent:
		g.Logger.SetLevel(btclog.LevelOff)
	case logger.Error:
		g.Logger.SetLevel(btclog.LevelError)
	case logger.Warn:
		g.Logger.SetLevel(btclog.LevelWarn)
	case logger.Info:
		g.Logger.SetLevel(btclog.LevelInfo)
	}
	return g
}

func (g *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	g.Logger.Infof(msg, data...)
}

func (g *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	g.Logger.Warnf(msg, data...)
}

func (g *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	g.Logger.Errorf(msg, data...)
}

// Trace logs every statement as json at trace level, and failed ones at error level.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin).Milliseconds()
	statement, rows := fc()
	entry := struct {
		Elapsed int64  `json:"elapsed_ms"`
		Rows    int64  `json:"rows"`
		Err     string `json:"err,omitempty"`
		Sql     string `json:"sql"`
	}{
		Elapsed: elapsed,
		Rows:    rows,
		Sql:     statement,
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		entry.Err = err.Error()
		line, _ := json.Marshal(entry)
		g.Logger.Error(string(line))
		return
	}
	line, _ := json.Marshal(entry)
	g.Logger.Trace(string(line))
}
