package service

import (
	"context"
	"time"

	"github.com/user/where2watch/internal/model"
	"github.com/user/where2watch/internal/utils"
)

const (
	statsCacheKey = "admin:stats"
	statsCacheTTL = time.Minute
	statsTopLimit = 10
)

// ViewStore 访问记录的写入与统计
type ViewStore interface {
	Record(ctx context.Context, contentID, ipHash string) error
	CountPerContent(ctx context.Context, limit int) ([]model.ViewCount, error)
	CountPerType(ctx context.Context) ([]model.TypeCount, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// Stats 后台统计
type Stats struct {
	TopContents  []model.ViewCount `json:"topContents"`
	ContentTypes []model.TypeCount `json:"contentTypes"`
	ViewsLast24h int64             `json:"viewsLast24h"`
	GeneratedAt  time.Time         `json:"generatedAt"`
}

// StatsService 访问统计，聚合结果缓存一分钟
type StatsService struct {
	views ViewStore
	cache *utils.Cache
}

// NewStatsService 创建统计服务
func NewStatsService(views ViewStore, cache *utils.Cache) *StatsService {
	if cache == nil {
		cache = utils.NewCache(statsCacheTTL, 10*time.Minute)
	}
	return &StatsService{views: views, cache: cache}
}

// RecordView 记录一次访问，IP 只保存哈希
func (s *StatsService) RecordView(ctx context.Context, contentID, clientIP string) error {
	return s.views.Record(ctx, contentID, utils.HashIP(clientIP))
}

// Get 获取统计
func (s *StatsService) Get(ctx context.Context) (*Stats, error) {
	return utils.Remember(s.cache, statsCacheKey, statsCacheTTL, func() (*Stats, error) {
		top, err := s.views.CountPerContent(ctx, statsTopLimit)
		if err != nil {
			return nil, err
		}
		types, err := s.views.CountPerType(ctx)
		if err != nil {
			return nil, err
		}
		recent, err := s.views.CountSince(ctx, time.Now().Add(-24*time.Hour))
		if err != nil {
			return nil, err
		}
		return &Stats{
			TopContents:  top,
			ContentTypes: types,
			ViewsLast24h: recent,
			GeneratedAt:  time.Now(),
		}, nil
	})
}

// Invalidate 清除缓存的统计
func (s *StatsService) Invalidate() {
	s.cache.Delete(statsCacheKey)
}
