// Package db 提供 GORM 初始化、连接池配置、慢查询日志与带超时的事务助手
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgLogger "github.com/StefanoVidesott/WannaWork-App/pkg/logger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config 数据库配置
type Config struct {
	Driver             string
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    int
	LogEnabled         bool
	SlowQueryThreshold int
	// TxTimeout 单个业务事务的最长持续时间（秒），超时回滚
	TxTimeout int
}

// DB 数据库实例包装
type DB struct {
	*gorm.DB
	config Config
}

// Init 初始化数据库连接
func Init(cfg Config) (*DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormLogger := NewGormLogger(cfg.LogEnabled, time.Duration(cfg.SlowQueryThreshold)*time.Millisecond)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := sqlDB.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pkgLogger.Info(context.Background(), "Database connected successfully", "driver", cfg.Driver)

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

// NewWithGorm 用现有 gorm.DB 构建包装（测试用）
func NewWithGorm(gdb *gorm.DB, cfg Config) *DB {
	return &DB{DB: gdb, config: cfg}
}

// Close 关闭数据库连接
func (d *DB) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx 在事务中执行函数，fn 返回错误或 panic 时回滚，否则提交
func (d *DB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := d.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	// 任何退出路径都释放事务
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WithTxTimeout 在有截止时间的事务中执行函数。
// 超时等同于业务错误：事务干净地回滚，错误返回给调用方。
func (d *DB) WithTxTimeout(ctx context.Context, fn func(tx *gorm.DB) error) error {
	timeout := time.Duration(d.config.TxTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	txCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := d.WithTx(txCtx, fn)
	if err != nil && errors.Is(txCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("transaction deadline exceeded after %s: %w", timeout, err)
	}
	return err
}

// GormLogger GORM 日志记录器实现
type GormLogger struct {
	enabled            bool
	slowQueryThreshold time.Duration
}

// NewGormLogger 创建 GORM 日志记录器
func NewGormLogger(enabled bool, slowQueryThreshold time.Duration) *GormLogger {
	return &GormLogger{
		enabled:            enabled,
		slowQueryThreshold: slowQueryThreshold,
	}
}

// LogMode 设置日志模式
func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return l
}

// Info 记录信息日志
func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled {
		pkgLogger.Info(ctx, fmt.Sprintf(msg, data...))
	}
}

// Warn 记录警告日志
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled {
		pkgLogger.Warn(ctx, fmt.Sprintf(msg, data...))
	}
}

// Error 记录错误日志
func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.enabled {
		pkgLogger.Error(ctx, fmt.Sprintf(msg, data...))
	}
}

// Trace 记录 SQL 执行日志
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		sql, rows := fc()
		pkgLogger.Error(ctx, "SQL execution failed",
			"sql", sql,
			"rows", rows,
			"elapsed", elapsed,
			"error", err,
		)
		return
	}

	if l.slowQueryThreshold > 0 && elapsed >= l.slowQueryThreshold {
		sql, rows := fc()
		pkgLogger.Warn(ctx, "Slow SQL query",
			"sql", sql,
			"rows", rows,
			"elapsed", elapsed,
		)
		return
	}

	if l.enabled {
		sql, rows := fc()
		pkgLogger.Debug(ctx, "SQL executed",
			"sql", sql,
			"rows", rows,
			"elapsed", elapsed,
		)
	}
}
