package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/scamreport/internal/bank/application"
	"github.com/wyfcoding/scamreport/pkg/response"
)

// BankHandler 银行目录 HTTP 处理器
type BankHandler struct {
	svc *application.BankService
}

// NewBankHandler 创建处理器
func NewBankHandler(svc *application.BankService) *BankHandler {
	return &BankHandler{svc: svc}
}

// RegisterRoutes 注册公开路由
func (h *BankHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/banks", h.GetBanks)
}

// RegisterAdminRoutes 注册管理路由
func (h *BankHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.POST("/banks/refresh", h.Refresh)
	admin.DELETE("/banks/cache", h.Clear)
}

// GetBanks 获取银行列表
func (h *BankHandler) GetBanks(c *gin.Context) {
	banks, err := h.svc.GetBanks(c.Request.Context())
	if err != nil {
		response.ErrorWithStatus(c, http.StatusInternalServerError, "Failed to fetch banks", "")
		return
	}
	response.Success(c, banks, "Banks fetched successfully")
}

// Refresh 强制刷新缓存
func (h *BankHandler) Refresh(c *gin.Context) {
	banks, err := h.svc.Refresh(c.Request.Context())
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadGateway, "Failed to refresh banks", err.Error())
		return
	}
	response.Success(c, banks, "Banks cache refreshed")
}

// Clear 清除缓存
func (h *BankHandler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context()); err != nil {
		response.ErrorWithStatus(c, http.StatusInternalServerError, "Failed to clear banks cache", err.Error())
		return
	}
	response.Success(c, nil, "Banks cache cleared")
}
