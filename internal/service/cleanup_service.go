package service

import (
	"context"
	"time"

	"github.com/user/where2watch/internal/logger"
	"go.uber.org/zap"
)

// ViewPurger 清理访问记录
type ViewPurger interface {
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// CleanupService 清理服务
type CleanupService struct {
	views         ViewPurger
	imports       *ImportService
	retentionDays int
	interval      time.Duration
	log           *zap.Logger
}

// NewCleanupService 创建清理服务，imports 可以为 nil
func NewCleanupService(views ViewPurger, imports *ImportService, retentionDays int, log *zap.Logger) *CleanupService {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &CleanupService{
		views:         views,
		imports:       imports,
		retentionDays: retentionDays,
		interval:      24 * time.Hour,
		log:           logger.OrNop(log).Named("cleanup"),
	}
}

// Start 启动定时清理任务，ctx 取消后退出
func (s *CleanupService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)

	go func() {
		defer ticker.Stop()
		// 启动时先运行一次
		s.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce 执行一次清理，返回删除的访问记录数
func (s *CleanupService) RunOnce(ctx context.Context) int64 {
	s.log.Info("开始清理过期数据", zap.Int("retentionDays", s.retentionDays))

	// 1. 清理超过保留期的访问记录
	before := time.Now().AddDate(0, 0, -s.retentionDays)
	affected, err := s.views.DeleteOlderThan(ctx, before)
	if err != nil {
		s.log.Error("清理访问记录失败", zap.Error(err))
	} else if affected > 0 {
		s.log.Info("已清理过期访问记录", zap.Int64("count", affected))
	}

	// 2. 清空导入预览缓存
	if s.imports != nil {
		s.imports.ClearCache()
	}
	return affected
}
