package repository

import (
	"context"
	"time"

	"github.com/user/where2watch/internal/apperror"
	"github.com/user/where2watch/internal/model"
	"gorm.io/gorm"
)

// ContentViewRepository 访问记录仓库
type ContentViewRepository struct {
	db *gorm.DB
}

// NewContentViewRepository 创建访问记录仓库
func NewContentViewRepository(db *gorm.DB) *ContentViewRepository {
	return &ContentViewRepository{db: db}
}

// Record 记录一次访问
func (r *ContentViewRepository) Record(ctx context.Context, contentID, ipHash string) error {
	view := &model.ContentView{
		ContentID: contentID,
		IPHash:    ipHash,
		ViewedAt:  time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(view).Error; err != nil {
		return apperror.Storage("view.record", "记录访问失败", err)
	}
	return nil
}

// CountPerContent 按内容统计访问量，取前 limit 个
func (r *ContentViewRepository) CountPerContent(ctx context.Context, limit int) ([]model.ViewCount, error) {
	var counts []model.ViewCount
	err := r.db.WithContext(ctx).Model(&model.ContentView{}).
		Select("content_id, COUNT(*) AS views").
		Group("content_id").
		Order("views DESC").
		Limit(limit).
		Scan(&counts).Error
	if err != nil {
		return nil, apperror.Storage("view.top", "统计访问量失败", err)
	}
	return counts, nil
}

// CountSince 统计某时间之后的访问次数
func (r *ContentViewRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ContentView{}).Where("viewed_at >= ?", since).Count(&count).Error
	if err != nil {
		return 0, apperror.Storage("view.countSince", "统计访问次数失败", err)
	}
	return count, nil
}

// typeBucket 与读取时的类型转换一致：非 movie 一律计为 tv
const typeBucket = "CASE WHEN type = 'movie' THEN 'movie' ELSE 'tv' END"

// CountPerType 各类型内容数量
func (r *ContentViewRepository) CountPerType(ctx context.Context) ([]model.TypeCount, error) {
	var counts []model.TypeCount
	err := r.db.WithContext(ctx).Model(&model.ContentRow{}).
		Select(typeBucket + " AS type, COUNT(*) AS count").
		Group(typeBucket).
		Order("type ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, apperror.Storage("view.countPerType", "统计内容类型失败", err)
	}
	return counts, nil
}

// DeleteOlderThan 删除过期访问记录
func (r *ContentViewRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("viewed_at < ?", before).Delete(&model.ContentView{})
	if res.Error != nil {
		return 0, apperror.Storage("view.cleanup", "清理访问记录失败", res.Error)
	}
	return res.RowsAffected, nil
}
