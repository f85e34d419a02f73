package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/where2watch/internal/config"
	"github.com/user/where2watch/internal/logger"
	"github.com/user/where2watch/internal/model"
	"github.com/user/where2watch/internal/repository"
	"github.com/user/where2watch/internal/service"
	"github.com/user/where2watch/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler HTTP 处理器
type Handler struct {
	Repos      *repository.Repositories
	Config     *config.Config
	Importer   *service.ImportService
	Categories *service.CategoryService
	Stats      *service.StatsService

	pinHash []byte
	log     *zap.Logger
}

// NewHandler 创建处理器，管理员 PIN 在这里做 bcrypt 哈希
func NewHandler(repos *repository.Repositories, cfg *config.Config, importer *service.ImportService, log *zap.Logger) (*Handler, error) {
	pinHash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPIN), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("哈希管理员 PIN 失败: %w", err)
	}

	log = logger.OrNop(log)
	return &Handler{
		Repos:      repos,
		Config:     cfg,
		Importer:   importer,
		Categories: service.NewCategoryService(repos.Content, repos.Category, log),
		Stats:      service.NewStatsService(repos.ContentView, nil),
		pinHash:    pinHash,
		log:        log.Named("http"),
	}, nil
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":   "ok",
		"site":     h.Config.SiteName,
		"tmdbLive": h.Config.TMDBConfigured(),
	})
}

// loadContent 按路径参数 id 读取内容，不存在时直接写 404
func (h *Handler) loadContent(c *gin.Context) (*model.Content, bool) {
	content, err := h.Repos.Content.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return nil, false
	}
	if content == nil {
		utils.NotFound(c, "内容不存在")
		return nil, false
	}
	return content, true
}

// positionParam 解析从 1 开始的序号参数，返回从 0 开始的下标
func positionParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 1 {
		utils.BadRequest(c, "无效的"+name)
		return 0, false
	}
	return n - 1, true
}
