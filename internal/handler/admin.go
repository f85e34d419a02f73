package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/where2watch/internal/model"
	"github.com/user/where2watch/internal/utils"
	"go.uber.org/zap"
)

type importRequest struct {
	ExternalID string            `json:"externalId" form:"externalId" binding:"required"`
	Type       model.ContentType `json:"type" form:"type" binding:"required,contenttype"`
}

// ==================== 后台：导入 ====================

// ImportPreview 从 TMDB 拉取内容预览，不入库
func (h *Handler) ImportPreview(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, "参数错误: 需要 externalId 与 type(movie|tv)")
		return
	}

	content, err := h.Importer.Import(c.Request.Context(), req.ExternalID, req.Type)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, content)
}

// ImportSave 导入并保存，已存在时整体覆盖
func (h *Handler) ImportSave(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, "参数错误: 需要 externalId 与 type(movie|tv)")
		return
	}

	ctx := c.Request.Context()
	content, err := h.Importer.Import(ctx, req.ExternalID, req.Type)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	existing, err := h.Repos.Content.GetByID(ctx, content.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var saved *model.Content
	if existing != nil {
		saved, err = h.Repos.Content.Update(ctx, *content)
	} else {
		saved, err = h.Repos.Content.Create(ctx, *content)
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	h.log.Info("内容已导入",
		zap.String("id", saved.ID),
		zap.String("source", string(content.Source)),
		zap.Bool("replaced", existing != nil))

	saved.Source = content.Source
	if existing != nil {
		utils.Success(c, saved)
		return
	}
	utils.Created(c, saved)
}

// ==================== 后台：内容 ====================

// CreateContent 手动创建内容
func (h *Handler) CreateContent(c *gin.Context) {
	var content model.Content
	if err := c.ShouldBindJSON(&content); err != nil {
		utils.BadRequest(c, "无效的请求数据")
		return
	}

	saved, err := h.Repos.Content.Create(c.Request.Context(), content)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, saved)
}

// UpdateContent 整体替换内容
func (h *Handler) UpdateContent(c *gin.Context) {
	if _, ok := h.loadContent(c); !ok {
		return
	}

	var content model.Content
	if err := c.ShouldBindJSON(&content); err != nil {
		utils.BadRequest(c, "无效的请求数据")
		return
	}
	content.ID = c.Param("id")

	saved, err := h.Repos.Content.Update(c.Request.Context(), content)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, saved)
}

// DeleteContent 删除内容
func (h *Handler) DeleteContent(c *gin.Context) {
	if _, ok := h.loadContent(c); !ok {
		return
	}
	if err := h.Repos.Content.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, nil)
}

// ==================== 后台：季与集 ====================

// AddSeason 追加一季
func (h *Handler) AddSeason(c *gin.Context) {
	content, ok := h.loadContent(c)
	if !ok {
		return
	}
	if content.Type != model.ContentTypeTV {
		utils.BadRequest(c, "只有剧集可以添加季")
		return
	}

	var season model.Season
	if err := c.ShouldBindJSON(&season); err != nil {
		utils.BadRequest(c, "无效的请求数据")
		return
	}
	content.AddSeason(season)
	h.saveContent(c, content)
}

// RemoveSeason 删除一季，季号为从 1 开始的序号
func (h *Handler) RemoveSeason(c *gin.Context) {
	content, ok := h.loadContent(c)
	if !ok {
		return
	}
	idx, ok := positionParam(c, "season")
	if !ok {
		return
	}
	if err := content.RemoveSeason(idx); err != nil {
		utils.NotFound(c, "季不存在")
		return
	}
	h.saveContent(c, content)
}

// AddEpisode 向某一季追加一集
func (h *Handler) AddEpisode(c *gin.Context) {
	content, ok := h.loadContent(c)
	if !ok {
		return
	}
	idx, ok := positionParam(c, "season")
	if !ok {
		return
	}
	if idx >= len(content.Seasons) {
		utils.NotFound(c, "季不存在")
		return
	}

	var episode model.Episode
	if err := c.ShouldBindJSON(&episode); err != nil {
		utils.BadRequest(c, "无效的请求数据")
		return
	}
	content.Seasons[idx].AddEpisode(episode)
	h.saveContent(c, content)
}

// RemoveEpisode 删除一集，剩余剧集重新编号
func (h *Handler) RemoveEpisode(c *gin.Context) {
	content, ok := h.loadContent(c)
	if !ok {
		return
	}
	seasonIdx, ok := positionParam(c, "season")
	if !ok {
		return
	}
	episodeIdx, ok := positionParam(c, "episode")
	if !ok {
		return
	}
	if seasonIdx >= len(content.Seasons) {
		utils.NotFound(c, "季不存在")
		return
	}
	if err := content.Seasons[seasonIdx].RemoveEpisode(episodeIdx); err != nil {
		utils.NotFound(c, "剧集不存在")
		return
	}
	h.saveContent(c, content)
}

func (h *Handler) saveContent(c *gin.Context, content *model.Content) {
	saved, err := h.Repos.Content.Update(c.Request.Context(), *content)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, saved)
}

// ==================== 后台：统计 ====================

// AdminStats 访问统计
func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.Stats.Get(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, stats)
}
