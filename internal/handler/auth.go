package handler

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/user/where2watch/internal/apperror"
	"github.com/user/where2watch/internal/middleware"
	"github.com/user/where2watch/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	PIN string `json:"pin" form:"pin" binding:"required"`
}

// ==================== 认证 ====================

// Login 管理员 PIN 登录，写入会话并返回 JWT
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequest(c, "请输入 PIN")
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.pinHash, []byte(req.PIN)); err != nil {
		utils.RespondError(c, apperror.Unauthorized("auth.login", "PIN 错误"))
		return
	}

	expiry := h.Config.AdminTokenExpiry
	token, err := middleware.GenerateToken(middleware.RoleAdmin, h.Config.AppSecret, expiry)
	if err != nil {
		utils.InternalServerError(c, "登录失败，请重试")
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionAdminKey, true)
	if err := session.Save(); err != nil {
		utils.InternalServerError(c, "登录失败，请重试")
		return
	}
	c.SetCookie(middleware.TokenCookie, token, int(expiry.Seconds()), "/", "", h.Config.IsProduction(), true)

	utils.Success(c, gin.H{
		"token":     token,
		"expiresAt": time.Now().Add(expiry),
	})
}

// Logout 登出
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.Config.IsProduction(), true)

	session := sessions.Default(c)
	session.Clear()
	session.Save()

	utils.Success(c, nil)
}
