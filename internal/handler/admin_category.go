package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/where2watch/internal/utils"
)

type categoryRequest struct {
	Name string `json:"name" form:"name" binding:"required"`
}

type categoryContentsRequest struct {
	ContentIDs []string `json:"contentIds"`
}

// ==================== 后台：分类管理 ====================

// AdminCategories 分类列表（含成员）
func (h *Handler) AdminCategories(c *gin.Context) {
	categories, err := h.Categories.GetCategories(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, categories)
}

// AdminCategoryCreate 添加分类
func (h *Handler) AdminCategoryCreate(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, "分类名称不能为空")
		return
	}

	row, err := h.Repos.Category.Create(c.Request.Context(), req.Name)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, row)
}

// AdminCategoryDelete 删除分类
func (h *Handler) AdminCategoryDelete(c *gin.Context) {
	if err := h.Repos.Category.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, nil)
}

// AdminCategorySetContents 替换分类成员，顺序即展示顺序
func (h *Handler) AdminCategorySetContents(c *gin.Context) {
	var req categoryContentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "无效的请求数据")
		return
	}

	if err := h.Repos.Category.SetContents(c.Request.Context(), c.Param("id"), req.ContentIDs); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, gin.H{"id": c.Param("id"), "contentIds": req.ContentIDs})
}
