package repository

import (
	"fmt"
	"time"

	"github.com/user/where2watch/internal/model"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDB 初始化数据库连接
func InitDB(driver, databaseURL string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(databaseURL)
	case "postgres", "":
		dialector = postgres.Open(databaseURL)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层连接失败: %w", err)
	}

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	// 设置连接池，sqlite 只允许单连接写入
	if driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate 建表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.ContentRow{},
		&model.CategoryRow{},
		&model.CategoryContent{},
		&model.ContentView{},
	)
}

// Repositories 仓库集合
type Repositories struct {
	DB          *gorm.DB
	Content     *ContentRepository
	Category    *CategoryRepository
	ContentView *ContentViewRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB, log *zap.Logger) *Repositories {
	return &Repositories{
		DB:          db,
		Content:     NewContentRepository(db, log),
		Category:    NewCategoryRepository(db),
		ContentView: NewContentViewRepository(db),
	}
}
