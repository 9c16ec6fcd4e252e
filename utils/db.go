package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lingua/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// CustomLogger 自定义 GORM 日志器：只打印慢查询和真实错误
type CustomLogger struct {
	SlowThreshold time.Duration // 慢查询阈值
	Log           *logrus.Logger
}

func (l *CustomLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l *CustomLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	// 不打印 Info 日志
}

func (l *CustomLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	// 不打印 Warn 日志
}

func (l *CustomLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	// 只打印真实错误，忽略 "record not found"
	if msg != gorm.ErrRecordNotFound.Error() {
		l.Log.Errorf("[GORM Error] "+msg, data...)
	}
}

func (l *CustomLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := logrus.Fields{"elapsed": elapsed.String(), "rows": rows}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Log.WithFields(fields).WithError(err).Error("[GORM Error] " + sql)
	} else if l.SlowThreshold > 0 && elapsed >= l.SlowThreshold {
		l.Log.WithFields(fields).Warn("[SLOW SQL] " + sql)
	}
}

// NewGormConfig 统一的 GORM 配置
func NewGormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: &CustomLogger{
			SlowThreshold: 100 * time.Millisecond, // 慢查询阈值：100ms
			Log:           Logger(),
		},
	}
}

// InitDB 初始化数据库连接
func InitDB(databaseURL string) error {
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	var err error
	DB, err = gorm.Open(postgres.Open(databaseURL), NewGormConfig())
	if err != nil {
		return err
	}

	// 获取底层的 sql.DB 以配置连接池
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	// 连接池配置
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	Logger().Info("Database connected")
	return nil
}

// Migrate 自动建表（开发环境使用，生产环境由托管数据库迁移）
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}

// CloseDB 关闭数据库连接
func CloseDB() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
