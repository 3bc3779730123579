package mysql

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/reading-tracker/internal/infrastructure/config"
)

// NewDB 创建数据库连接(storage.driver=mysql时使用)
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := openDB(cfg.MySQL.DSN(), cfg.Server.Mode == "debug")
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	log.Info("MySQL连接成功",
		zap.String("host", cfg.MySQL.Host),
		zap.String("dbname", cfg.MySQL.DBName),
	)
	return db, nil
}

// Close 关闭连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func openDB(dsn string, debug bool) (*gorm.DB, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: time.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	return db, nil
}

// autoMigrate 自动迁移表结构
// 注意：生产环境应使用版本化的迁移脚本
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&BookModel{})
}

// BookModel GORM图书模型
// 设计说明:
// 1. ID由领域服务分配(最大ID+1),关闭自增,主键保证唯一
// 2. 新ID总是当前最大值+1,按ID排序即插入顺序
// 3. Rating与RatingValue同时保存,与文档存储的字段保持一致
type BookModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement:false;comment:图书ID"`
	Title       string `gorm:"size:255;not null;comment:书名"`
	Author      string `gorm:"size:255;not null;comment:作者"`
	Genre       string `gorm:"size:100;comment:类型"`
	Rating      string `gorm:"size:20;comment:评分展示形式"`
	RatingValue int    `gorm:"type:tinyint;default:0;comment:评分(0表示未评分)"`
	Comments    string `gorm:"type:text;comment:读后感"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}
