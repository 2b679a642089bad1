package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/scamreport/internal/casereport/application"
	"github.com/wyfcoding/scamreport/internal/casereport/domain"
	"github.com/wyfcoding/scamreport/pkg/logger"
	"github.com/wyfcoding/scamreport/pkg/response"
)

// CaseHandler 案件 HTTP 处理器
type CaseHandler struct {
	cmd   *application.CaseCommandService
	query *application.CaseQueryService
}

// NewCaseHandler 创建案件处理器
func NewCaseHandler(cmd *application.CaseCommandService, query *application.CaseQueryService) *CaseHandler {
	return &CaseHandler{cmd: cmd, query: query}
}

// RegisterRoutes 注册公开路由，api 为 /api/v1
func (h *CaseHandler) RegisterRoutes(api *gin.RouterGroup) {
	cases := api.Group("/cases")
	{
		cases.POST("", h.SubmitCase)
		cases.GET("", h.SearchCases)
		cases.GET("/search", h.SearchScammerStats)
		cases.GET("/stats/count", h.CountCases)
		cases.GET("/account/:accountIdentifier/:bankCode", h.GetCasesByAccount)
		cases.GET("/:id", h.GetCase)
	}
	api.GET("/stats/:accountIdentifier/:bankCode", h.GetStats)
}

// RegisterAdminRoutes 注册管理路由，admin 组需已挂载鉴权中间件
func (h *CaseHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.PATCH("/cases/:id/status", h.UpdateStatus)
}

// SubmitCase 提交案件
func (h *CaseHandler) SubmitCase(c *gin.Context) {
	var req application.SubmitCaseCommand
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request data", err.Error())
		return
	}

	result, err := h.cmd.SubmitCase(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to submit case")
		return
	}

	response.SuccessWithStatus(c, http.StatusCreated, result, "Case submitted successfully and pending review")
}

// SearchScammerStats 按姓名或账号搜索诈骗者统计
func (h *CaseHandler) SearchScammerStats(c *gin.Context) {
	q := application.StatsSearchQuery{
		Input:    c.Query("input"),
		BankCode: c.Query("bankCode"),
	}

	profile, err := h.query.SearchScammerStats(c.Request.Context(), q)
	if err != nil {
		writeError(c, err, "Failed to search scammer")
		return
	}
	if profile == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "No scammer found", "")
		return
	}

	response.Success(c, profile, "Scammer stats found successfully")
}

// SearchCases 自由文本搜索已审核案件
func (h *CaseHandler) SearchCases(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}

	cases, err := h.query.SearchCases(c.Request.Context(), application.SearchQuery{
		Input:    c.Query("input"),
		BankCode: c.Query("bankCode"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(c, err, "Failed to search cases")
		return
	}

	response.Success(c, gin.H{"cases": cases, "count": len(cases)}, "Cases retrieved successfully")
}

// GetCase 获取已审核案件
func (h *CaseHandler) GetCase(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid case id", "")
		return
	}

	cs, err := h.query.GetCaseByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to retrieve case")
		return
	}
	if cs == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "Case not found", "")
		return
	}

	response.Success(c, cs, "Case retrieved successfully")
}

// GetCasesByAccount 获取某 (账号, 银行) 的已审核案件
func (h *CaseHandler) GetCasesByAccount(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	account := c.Param("accountIdentifier")
	bankCode := c.Param("bankCode")

	cases, err := h.query.GetCasesByAccount(c.Request.Context(), application.AccountQuery{
		AccountIdentifier: account,
		BankCode:          bankCode,
		Limit:             limit,
		Offset:            offset,
	})
	if err != nil {
		writeError(c, err, "Failed to retrieve cases")
		return
	}

	if limit == 0 {
		limit = 50
	}
	response.Success(c, gin.H{
		"cases":             cases,
		"count":             len(cases),
		"accountIdentifier": account,
		"bankCode":          bankCode,
		"limit":             limit,
		"offset":            offset,
	}, "Cases retrieved successfully")
}

// CountCases 案件计数
func (h *CaseHandler) CountCases(c *gin.Context) {
	count, err := h.query.CountCases(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to count cases")
		return
	}
	response.Success(c, gin.H{"count": count}, "Approved cases count retrieved successfully")
}

// GetStats 精确获取聚合统计
func (h *CaseHandler) GetStats(c *gin.Context) {
	stats, err := h.query.GetStats(c.Request.Context(), c.Param("accountIdentifier"), c.Param("bankCode"))
	if err != nil {
		writeError(c, err, "Failed to retrieve stats")
		return
	}
	if stats == nil {
		response.ErrorWithStatus(c, http.StatusNotFound, "No stats found", "")
		return
	}
	response.Success(c, stats, "Stats retrieved successfully")
}

type updateStatusRequest struct {
	Status          string  `json:"status"`
	ReviewedByAdmin string  `json:"reviewedByAdmin"`
	AdminNotes      *string `json:"adminNotes"`
}

// UpdateStatus 审核案件
func (h *CaseHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid case id", "")
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request data", err.Error())
		return
	}

	cs, err := h.cmd.UpdateStatus(c.Request.Context(), application.UpdateStatusCommand{
		ID:       id,
		Status:   req.Status,
		Reviewer: req.ReviewedByAdmin,
		Notes:    req.AdminNotes,
	})
	if err != nil {
		writeError(c, err, "Failed to update case status")
		return
	}

	response.Success(c, cs, "Case status updated successfully")
}

// pagination 解析 limit/offset，缺省为 0，由应用层取默认值
func pagination(c *gin.Context) (limit, offset int, ok bool) {
	var err error
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid limit", "")
			return 0, 0, false
		}
		if limit < 1 {
			response.ErrorWithStatus(c, http.StatusBadRequest, "Validation failed",
				[]domain.FieldError{{Field: "limit", Message: "must be at least 1"}})
			return 0, 0, false
		}
	}
	if v := c.Query("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid offset", "")
			return 0, 0, false
		}
	}
	return limit, offset, true
}

// writeError 将领域错误映射为 HTTP 状态码
func writeError(c *gin.Context, err error, fallback string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		response.ErrorWithStatus(c, http.StatusBadRequest, "Validation failed", ve.Fields)
	case errors.Is(err, domain.ErrInvalidStatus):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, domain.ErrCaseNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, "Case not found", "")
	case errors.Is(err, domain.ErrInvalidTransition):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "")
	default:
		logger.Error(c.Request.Context(), fallback, "path", c.FullPath(), "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, fallback, err.Error())
	}
}
