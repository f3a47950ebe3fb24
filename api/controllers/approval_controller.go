/*
 * @module api/controllers/approval_controller
 * @description 审批管理控制器，提供待审批请求查询和人工决定提交的API接口
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求处理流程：参数解析 -> 审批服务调用 -> 统一响应
 * @rules 决定只能作用于pending状态的请求；decision取值approve/deny/modify
 * @dependencies pipeline-monitor-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/approval/approval_service.go, api/routes.go
 */

package controllers

import (
	"net/http"
	"strings"

	"pipeline-monitor-service/service"
	"pipeline-monitor-service/service/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// ApprovalController 审批管理控制器
type ApprovalController struct{}

// NewApprovalController 创建审批管理控制器实例
func NewApprovalController() *ApprovalController {
	return &ApprovalController{}
}

// ApprovalDecisionRequest 审批决定请求结构
type ApprovalDecisionRequest struct {
	Decision  string `json:"decision"` // approve/deny/modify
	Reason    string `json:"reason,omitempty"`
	DecidedBy string `json:"decided_by,omitempty"`
}

// ListPendingApprovals 获取待审批请求列表
// @Summary 获取待审批请求列表
// @Description 按创建时间顺序获取全部待审批请求
// @Tags 审批
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.ApprovalRequest} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /approvals/pending [get]
func (c *ApprovalController) ListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	requests, err := service.GlobalApprovalService.ListPending(r.Context())
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取待审批请求失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取待审批请求成功",
		Data:   requests,
	})
}

// GetApproval 根据ID获取审批请求
// @Summary 根据ID获取审批请求
// @Description 根据ID获取审批请求详情
// @Tags 审批
// @Produce json
// @Param id path string true "请求ID"
// @Success 200 {object} APIResponse{data=models.ApprovalRequest} "获取成功"
// @Failure 404 {object} APIResponse "审批请求不存在"
// @Router /approvals/{id} [get]
func (c *ApprovalController) GetApproval(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	request, err := service.GlobalApprovalService.Get(r.Context(), id)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "审批请求不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取审批请求成功",
		Data:   request,
	})
}

// DecideApproval 提交审批决定
// @Summary 提交审批决定
// @Description 对pending状态的审批请求提交人工决定，终态变更后通过数据库通知等待方
// @Tags 审批
// @Accept json
// @Produce json
// @Param id path string true "请求ID"
// @Param request body ApprovalDecisionRequest true "审批决定"
// @Success 200 {object} APIResponse{data=models.ApprovalRequest} "决定提交成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 409 {object} APIResponse "审批请求不存在或已处理"
// @Router /approvals/{id}/decision [post]
func (c *ApprovalController) DecideApproval(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ApprovalDecisionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	decision := strings.ToLower(strings.TrimSpace(req.Decision))
	switch decision {
	case "approve", "deny", "modify":
	default:
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "decision取值必须为approve、deny或modify",
		})
		return
	}

	request, err := service.GlobalApprovalService.Decide(r.Context(), id, decision, req.Reason, req.DecidedBy)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusConflict,
			Msg:    err.Error(),
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "审批决定提交成功",
		Data:   request,
	})
}

// GetApprovalHistory 获取审批历史列表
// @Summary 获取审批历史列表
// @Description 分页获取全部审批请求，支持按状态过滤
// @Tags 审批
// @Produce json
// @Param status query string false "状态过滤" Enums(pending, approved, denied)
// @Success 200 {object} APIResponse{data=[]models.ApprovalRequest} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /approvals [get]
func (c *ApprovalController) GetApprovalHistory(w http.ResponseWriter, r *http.Request) {
	query := service.DB.Model(&models.ApprovalRequest{})
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []models.ApprovalRequest
	if err := query.Order("created_at DESC").Limit(200).Find(&requests).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取审批历史失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取审批历史成功",
		Data:   requests,
	})
}
