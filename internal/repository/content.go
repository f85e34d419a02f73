package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/user/where2watch/internal/apperror"
	"github.com/user/where2watch/internal/logger"
	"github.com/user/where2watch/internal/model"
	"github.com/user/where2watch/internal/normalize"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContentRepository 内容仓库
type ContentRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewContentRepository 创建内容仓库
func NewContentRepository(db *gorm.DB, log *zap.Logger) *ContentRepository {
	return &ContentRepository{db: db, log: logger.OrNop(log).Named("repo")}
}

// GetAll 获取全部内容，按创建时间倒序
// 查询失败时不返回部分结果
func (r *ContentRepository) GetAll(ctx context.Context) ([]model.Content, error) {
	var rows []model.ContentRow
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		r.log.Error("查询全部内容失败", zap.Error(err))
		return nil, apperror.Storage("content.getAll", "查询全部内容失败", err)
	}
	return r.toContents(rows), nil
}

// GetByID 根据 ID 获取内容，不存在时返回 nil, nil
func (r *ContentRepository) GetByID(ctx context.Context, id string) (*model.Content, error) {
	if strings.TrimSpace(id) == "" {
		r.log.Warn("内容 ID 为空")
		return nil, nil
	}

	var row model.ContentRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.log.Warn("内容不存在", zap.String("id", id))
		return nil, nil
	}
	if err != nil {
		r.log.Error("查询内容失败", zap.String("id", id), zap.Error(err))
		return nil, apperror.Storage("content.getById", "查询内容失败: "+id, err)
	}

	c := r.toContent(row)
	return &c, nil
}

// GetByType 按类型获取内容，all 表示不过滤
// 存储中的未知类型按 tv 处理，因此 tv 匹配所有非 movie 的行
func (r *ContentRepository) GetByType(ctx context.Context, t model.ContentType) ([]model.Content, error) {
	if t == model.ContentTypeAll {
		return r.GetAll(ctx)
	}
	if !t.IsValid() {
		return nil, apperror.Validation("content.getByType", "不支持的类型: %q", t)
	}

	q := r.db.WithContext(ctx).Order("created_at DESC")
	if t == model.ContentTypeMovie {
		q = q.Where("type = ?", model.ContentTypeMovie)
	} else {
		q = q.Where("type <> ? OR type IS NULL", model.ContentTypeMovie)
	}

	var rows []model.ContentRow
	if err := q.Find(&rows).Error; err != nil {
		r.log.Error("按类型查询内容失败", zap.String("type", string(t)), zap.Error(err))
		return nil, apperror.Storage("content.getByType", "按类型查询内容失败", err)
	}
	return r.toContents(rows), nil
}

// Search 按标题或简介模糊搜索（不区分大小写），不排序不分页
func (r *ContentRepository) Search(ctx context.Context, query string) ([]model.Content, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Content{}, nil
	}

	// 两侧使用同一个 LOWER，sqlite 的 LOWER 只转换 ASCII 字母
	pattern := "%" + escapeLike(query) + "%"
	var rows []model.ContentRow
	err := r.db.WithContext(ctx).
		Where(`LOWER(title) LIKE LOWER(?) ESCAPE '\' OR LOWER(overview) LIKE LOWER(?) ESCAPE '\'`, pattern, pattern).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		r.log.Error("搜索内容失败", zap.String("query", query), zap.Error(err))
		return nil, apperror.Storage("content.search", "搜索内容失败", err)
	}
	return r.toContents(rows), nil
}

// Create 创建内容，返回重新读取后的结果
func (r *ContentRepository) Create(ctx context.Context, c model.Content) (*model.Content, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Prepare()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	row, err := toRow(c)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	row.CreatedAt = now
	row.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		r.log.Error("创建内容失败", zap.String("id", row.ID), zap.Error(err))
		return nil, apperror.Storage("content.create", "创建内容失败: "+row.ID, err)
	}

	return r.reload(ctx, "content.create", row.ID)
}

// Update 整体替换内容（包括所有嵌套集合），并刷新 updated_at
func (r *ContentRepository) Update(ctx context.Context, c model.Content) (*model.Content, error) {
	if strings.TrimSpace(c.ID) == "" {
		return nil, apperror.Validation("content.update", "缺少内容 ID")
	}
	c.Prepare()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	row, err := toRow(c)
	if err != nil {
		return nil, err
	}
	row.UpdatedAt = time.Now()

	res := r.db.WithContext(ctx).
		Model(&model.ContentRow{ID: row.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(&row)
	if res.Error != nil {
		r.log.Error("更新内容失败", zap.String("id", row.ID), zap.Error(res.Error))
		return nil, apperror.Storage("content.update", "更新内容失败: "+row.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Warn("更新的内容不存在", zap.String("id", row.ID))
		return nil, apperror.Storage("content.update", "内容不存在: "+row.ID, gorm.ErrRecordNotFound)
	}

	return r.reload(ctx, "content.update", row.ID)
}

// Delete 删除内容，行不存在时返回错误
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.Validation("content.delete", "缺少内容 ID")
	}

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ContentRow{})
	if res.Error != nil {
		r.log.Error("删除内容失败", zap.String("id", id), zap.Error(res.Error))
		return apperror.Storage("content.delete", "删除内容失败: "+id, res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Warn("删除的内容不存在", zap.String("id", id))
		return apperror.Storage("content.delete", "内容不存在: "+id, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *ContentRepository) reload(ctx context.Context, op, id string) (*model.Content, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperror.Storage(op, "写入后读取不到内容: "+id, gorm.ErrRecordNotFound)
	}
	return c, nil
}

func (r *ContentRepository) toContents(rows []model.ContentRow) []model.Content {
	out := make([]model.Content, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.toContent(row))
	}
	return out
}

// toContent 存储行 -> 领域模型
func (r *ContentRepository) toContent(row model.ContentRow) model.Content {
	t, ok := model.CoerceContentType(row.Type)
	if !ok {
		r.log.Warn("未知的内容类型，按 tv 处理", zap.String("id", row.ID), zap.String("type", row.Type))
	}

	c := model.Content{
		ID:             row.ID,
		Title:          row.Title,
		Overview:       row.Overview,
		PosterPath:     row.PosterPath,
		BackdropPath:   row.BackdropPath,
		ReleaseDate:    row.ReleaseDate,
		Type:           t,
		Genres:         []string(row.Genres),
		Rating:         row.Rating,
		Duration:       row.Duration,
		Status:         row.Status,
		TrailerURL:     row.TrailerURL,
		WatchProviders: normalize.Providers(row.WatchProviders),
		Cast:           normalize.Cast(row.CastInfo),
		Seasons:        normalize.Seasons(row.Seasons),
		Images:         normalize.Images(row.Images),
		EmbedVideos:    normalize.EmbedVideos(row.EmbedVideos),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	c.EnsureCollections()
	return c
}

// toRow 领域模型 -> 存储行，嵌套集合编码为 JSON 文本
func toRow(c model.Content) (model.ContentRow, error) {
	row := model.ContentRow{
		ID:           c.ID,
		Title:        c.Title,
		Overview:     c.Overview,
		PosterPath:   c.PosterPath,
		BackdropPath: c.BackdropPath,
		ReleaseDate:  c.ReleaseDate,
		Type:         string(c.Type),
		Genres:       model.StringList(c.Genres),
		Rating:       c.Rating,
		Duration:     c.Duration,
		Status:       c.Status,
		TrailerURL:   c.TrailerURL,
	}

	columns := []struct {
		dst *string
		v   any
	}{
		{&row.WatchProviders, c.WatchProviders},
		{&row.CastInfo, c.Cast},
		{&row.Seasons, c.Seasons},
		{&row.Images, c.Images},
		{&row.EmbedVideos, c.EmbedVideos},
	}
	for _, col := range columns {
		data, err := json.Marshal(col.v)
		if err != nil {
			return row, apperror.Validation("content.encode", "序列化嵌套字段失败: %v", err)
		}
		*col.dst = string(data)
	}
	return row, nil
}

// escapeLike 转义 LIKE 通配符
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
