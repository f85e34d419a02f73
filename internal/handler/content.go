package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/where2watch/internal/deeplink"
	"github.com/user/where2watch/internal/model"
	"github.com/user/where2watch/internal/utils"
	"go.uber.org/zap"
)

// ==================== 公开 API ====================

// ListContents 内容列表，?type=movie|tv|all
func (h *Handler) ListContents(c *gin.Context) {
	t := model.ContentType(strings.ToLower(c.DefaultQuery("type", string(model.ContentTypeAll))))
	contents, err := h.Repos.Content.GetByType(c.Request.Context(), t)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, contents)
}

// GetContent 内容详情
func (h *Handler) GetContent(c *gin.Context) {
	content, ok := h.loadContent(c)
	if !ok {
		return
	}
	utils.Success(c, content)
}

// SearchContents 标题/简介搜索
func (h *Handler) SearchContents(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		utils.BadRequest(c, "搜索关键词不能为空")
		return
	}
	contents, err := h.Repos.Content.Search(c.Request.Context(), q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, contents)
}

// ListCategories 分类及其内容
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.Categories.GetCategories(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, categories)
}

// Browse 首页分区
func (h *Handler) Browse(c *gin.Context) {
	sections, err := h.Categories.BuildSections(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, sections)
}

// ProviderLink 点击平台时生成跳转链接，优先使用已保存的 redirectLink
func (h *Handler) ProviderLink(c *gin.Context) {
	content, ok := h.loadContent(c)
	if !ok {
		return
	}

	providerID := c.Param("providerId")
	for _, p := range content.WatchProviders {
		if p.ID != providerID {
			continue
		}
		link := p.RedirectLink
		if link == "" {
			id := content.ID
			if ext, _, ok := model.ParseImportedContentID(content.ID); ok {
				id = ext
			}
			link = deeplink.Build(p.Name, id, content.Type)
		}
		utils.Success(c, gin.H{"provider": p.Name, "url": link})
		return
	}
	utils.NotFound(c, "平台不存在")
}

// RecordView 记录一次访问
func (h *Handler) RecordView(c *gin.Context) {
	content, ok := h.loadContent(c)
	if !ok {
		return
	}
	if err := h.Stats.RecordView(c.Request.Context(), content.ID, c.ClientIP()); err != nil {
		// 统计失败不影响前端
		h.log.Warn("记录访问失败", zap.String("id", content.ID), zap.Error(err))
	}
	utils.Success(c, nil)
}
