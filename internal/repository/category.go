package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/user/where2watch/internal/apperror"
	"github.com/user/where2watch/internal/model"
	"gorm.io/gorm"
)

// CategoryRepository 分类仓库
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓库
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ListAll 获取所有分类，按位置和名称排序
func (r *CategoryRepository) ListAll(ctx context.Context) ([]model.CategoryRow, error) {
	var rows []model.CategoryRow
	if err := r.db.WithContext(ctx).Order("position ASC, name ASC").Find(&rows).Error; err != nil {
		return nil, apperror.Storage("category.list", "查询分类失败", err)
	}
	return rows, nil
}

// Memberships 获取所有成员关系，按分类内位置排序
func (r *CategoryRepository) Memberships(ctx context.Context) ([]model.CategoryContent, error) {
	var rows []model.CategoryContent
	if err := r.db.WithContext(ctx).Order("category_id ASC, position ASC").Find(&rows).Error; err != nil {
		return nil, apperror.Storage("category.memberships", "查询分类成员失败", err)
	}
	return rows, nil
}

// Create 创建分类，名称唯一
func (r *CategoryRepository) Create(ctx context.Context, name string) (*model.CategoryRow, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("category.create", "分类名称不能为空")
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.CategoryRow{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, apperror.Storage("category.create", "检查分类名称失败", err)
	}
	if count > 0 {
		return nil, apperror.Validation("category.create", "分类已存在: %s", name)
	}

	var maxPos int
	if err := r.db.WithContext(ctx).Model(&model.CategoryRow{}).Select("COALESCE(MAX(position), 0)").Scan(&maxPos).Error; err != nil {
		return nil, apperror.Storage("category.create", "读取分类排序失败", err)
	}

	now := time.Now()
	row := &model.CategoryRow{
		ID:        uuid.NewString(),
		Name:      name,
		Position:  maxPos + 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, apperror.Storage("category.create", "创建分类失败", err)
	}
	return row, nil
}

// Delete 删除分类及其成员关系
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&model.CategoryContent{}).Error; err != nil {
			return apperror.Storage("category.delete", "删除分类成员失败", err)
		}
		res := tx.Where("id = ?", id).Delete(&model.CategoryRow{})
		if res.Error != nil {
			return apperror.Storage("category.delete", "删除分类失败", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.NotFound("category.delete", "分类不存在: %s", id)
		}
		return nil
	})
}

// SetContents 替换分类的成员列表，顺序即位置
func (r *CategoryRepository) SetContents(ctx context.Context, categoryID string, contentIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.CategoryRow
		err := tx.Where("id = ?", categoryID).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("category.setContents", "分类不存在: %s", categoryID)
		}
		if err != nil {
			return apperror.Storage("category.setContents", "查询分类失败", err)
		}

		if err := tx.Where("category_id = ?", categoryID).Delete(&model.CategoryContent{}).Error; err != nil {
			return apperror.Storage("category.setContents", "清空分类成员失败", err)
		}

		seen := make(map[string]bool, len(contentIDs))
		members := make([]model.CategoryContent, 0, len(contentIDs))
		for _, id := range contentIDs {
			id = strings.TrimSpace(id)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			members = append(members, model.CategoryContent{
				CategoryID: categoryID,
				ContentID:  id,
				Position:   len(members),
			})
		}
		if len(members) == 0 {
			return nil
		}
		if err := tx.Create(&members).Error; err != nil {
			return apperror.Storage("category.setContents", "写入分类成员失败", err)
		}
		return tx.Model(&row).Update("updated_at", time.Now()).Error
	})
}
