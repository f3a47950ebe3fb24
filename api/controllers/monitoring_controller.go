/*
 * @module api/controllers/monitoring_controller
 * @description 监控运行控制器，提供手动触发监控运行和查询监控历史的API接口
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求处理流程：参数解析 -> 数据集加载 -> 监控运行 -> 统一响应
 * @rules 统一的错误处理和响应格式；监控运行为同步执行，审批通道阻塞时请求保持挂起
 * @dependencies pipeline-monitor-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/monitor/monitor_service.go, api/routes.go
 */

package controllers

import (
	"net/http"
	"strconv"

	"pipeline-monitor-service/service"
	"pipeline-monitor-service/service/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// MonitoringController 监控运行控制器
type MonitoringController struct{}

// NewMonitoringController 创建监控运行控制器实例
func NewMonitoringController() *MonitoringController {
	return &MonitoringController{}
}

// MonitoringRunRequest 手动触发监控运行的请求结构
// 三种数据集来源（按优先级）：内联数据集、显式数据源配置、已登记管道的数据源配置
type MonitoringRunRequest struct {
	PipelineName  string          `json:"pipeline_name"`
	Dataset       *models.Dataset `json:"dataset,omitempty"`
	SourceType    string          `json:"source_type,omitempty"`
	SourceOptions models.JSONB    `json:"source_options,omitempty"`
}

// RunMonitoring 触发一次监控运行
// @Summary 触发监控运行
// @Description 对指定管道执行一次完整监控运行，数据集可内联提供、按请求配置加载或使用已登记管道的数据源配置
// @Tags 监控
// @Accept json
// @Produce json
// @Param request body MonitoringRunRequest true "监控运行请求"
// @Success 200 {object} APIResponse{data=models.MonitoringRecord} "运行成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /monitoring/run [post]
func (c *MonitoringController) RunMonitoring(w http.ResponseWriter, r *http.Request) {
	var req MonitoringRunRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if req.PipelineName == "" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "管道名称不能为空",
		})
		return
	}

	dataset, errMsg := c.resolveDataset(r, &req)
	if errMsg != "" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    errMsg,
		})
		return
	}

	record, err := service.GlobalMonitorService.Run(r.Context(), dataset, req.PipelineName)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "监控运行失败: " + err.Error(),
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "监控运行完成",
		Data:   record,
	})
}

// resolveDataset 按请求内容解析数据集，返回错误描述为空表示成功
func (c *MonitoringController) resolveDataset(r *http.Request, req *MonitoringRunRequest) (*models.Dataset, string) {
	if req.Dataset != nil {
		return req.Dataset, ""
	}

	sourceType := req.SourceType
	sourceOptions := req.SourceOptions
	if sourceType == "" {
		// 回查已登记的管道配置
		var config models.PipelineConfig
		if err := service.DB.Where("name = ?", req.PipelineName).First(&config).Error; err != nil {
			return nil, "管道未登记且未提供数据集或数据源配置"
		}
		sourceType = config.SourceType
		sourceOptions = config.SourceOptions
	}

	dataset, err := service.GlobalLoaderRegistry.Load(r.Context(), sourceType, sourceOptions)
	if err != nil {
		return nil, "数据集加载失败: " + err.Error()
	}
	return dataset, ""
}

// GetMonitoringHistory 获取监控历史列表
// @Summary 获取监控历史列表
// @Description 分页获取监控运行历史记录，支持按管道名称过滤
// @Tags 监控
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页数量" default(10)
// @Param pipeline_name query string false "管道名称"
// @Success 200 {object} PaginatedResponse{data=[]models.MonitoringHistory} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /monitoring/history [get]
func (c *MonitoringController) GetMonitoringHistory(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 10
	}

	query := service.DB.Model(&models.MonitoringHistory{})
	if pipelineName := r.URL.Query().Get("pipeline_name"); pipelineName != "" {
		query = query.Where("pipeline_name = ?", pipelineName)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取监控历史失败",
		})
		return
	}

	var histories []models.MonitoringHistory
	if err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&histories).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取监控历史失败",
		})
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "获取监控历史成功",
		Data:   histories,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetMonitoringRecord 根据ID获取监控记录
// @Summary 根据ID获取监控记录
// @Description 根据ID获取单条监控运行历史记录详情
// @Tags 监控
// @Produce json
// @Param id path string true "记录ID"
// @Success 200 {object} APIResponse{data=models.MonitoringHistory} "获取成功"
// @Failure 404 {object} APIResponse "记录不存在"
// @Router /monitoring/history/{id} [get]
func (c *MonitoringController) GetMonitoringRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var history models.MonitoringHistory
	if err := service.DB.Where("id = ?", id).First(&history).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "监控记录不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取监控记录成功",
		Data:   history,
	})
}
