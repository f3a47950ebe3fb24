/*
 * @module api/controllers/pipeline_controller
 * @description 管道配置控制器，提供管道登记、修改、删除和查询的API接口
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求处理流程：参数解析 -> 配置变更 -> 调度器重建 -> 统一响应
 * @rules 管道名称唯一；cron表达式或启用状态变更后重建调度任务
 * @dependencies pipeline-monitor-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/scheduler/scheduler_service.go, api/routes.go
 */

package controllers

import (
	"net/http"

	"pipeline-monitor-service/service"
	"pipeline-monitor-service/service/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// PipelineController 管道配置控制器
type PipelineController struct{}

// NewPipelineController 创建管道配置控制器实例
func NewPipelineController() *PipelineController {
	return &PipelineController{}
}

// 数据源类型合法值
var validSourceTypes = map[string]bool{
	"csv":        true,
	"kafka":      true,
	"postgresql": true,
}

// CreatePipeline 登记管道配置
// @Summary 登记管道配置
// @Description 登记新的管道配置，配置了cron表达式的管道将被调度器接管
// @Tags 管道
// @Accept json
// @Produce json
// @Param pipeline body models.PipelineConfig true "管道配置"
// @Success 201 {object} APIResponse{data=models.PipelineConfig} "登记成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /pipelines [post]
func (c *PipelineController) CreatePipeline(w http.ResponseWriter, r *http.Request) {
	var config models.PipelineConfig
	if err := render.DecodeJSON(r.Body, &config); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if config.Name == "" || !validSourceTypes[config.SourceType] {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "管道名称不能为空且数据源类型必须为csv、kafka或postgresql",
		})
		return
	}

	if err := service.DB.Create(&config).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "登记管道配置失败",
		})
		return
	}

	c.reloadScheduler()

	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "登记管道配置成功",
		Data:   config,
	})
}

// GetPipelines 获取管道配置列表
// @Summary 获取管道配置列表
// @Description 获取全部已登记的管道配置
// @Tags 管道
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.PipelineConfig} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /pipelines [get]
func (c *PipelineController) GetPipelines(w http.ResponseWriter, r *http.Request) {
	var configs []models.PipelineConfig
	if err := service.DB.Order("created_at ASC").Find(&configs).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取管道配置列表失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取管道配置列表成功",
		Data:   configs,
	})
}

// GetPipeline 根据ID获取管道配置
// @Summary 根据ID获取管道配置
// @Description 根据ID获取管道配置详情
// @Tags 管道
// @Produce json
// @Param id path string true "管道ID"
// @Success 200 {object} APIResponse{data=models.PipelineConfig} "获取成功"
// @Failure 404 {object} APIResponse "管道配置不存在"
// @Router /pipelines/{id} [get]
func (c *PipelineController) GetPipeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var config models.PipelineConfig
	if err := service.DB.Where("id = ?", id).First(&config).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "管道配置不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取管道配置成功",
		Data:   config,
	})
}

// UpdatePipeline 更新管道配置
// @Summary 更新管道配置
// @Description 更新管道配置并重建调度任务
// @Tags 管道
// @Accept json
// @Produce json
// @Param id path string true "管道ID"
// @Param pipeline body models.PipelineConfig true "管道配置"
// @Success 200 {object} APIResponse{data=models.PipelineConfig} "更新成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 404 {object} APIResponse "管道配置不存在"
// @Router /pipelines/{id} [put]
func (c *PipelineController) UpdatePipeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var config models.PipelineConfig
	if err := service.DB.Where("id = ?", id).First(&config).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "管道配置不存在",
		})
		return
	}

	var update models.PipelineConfig
	if err := render.DecodeJSON(r.Body, &update); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if update.SourceType != "" && !validSourceTypes[update.SourceType] {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "数据源类型必须为csv、kafka或postgresql",
		})
		return
	}

	updates := map[string]interface{}{
		"is_enabled":      update.IsEnabled,
		"cron_expression": update.CronExpression,
	}
	if update.SourceType != "" {
		updates["source_type"] = update.SourceType
	}
	if update.SourceOptions != nil {
		updates["source_options"] = update.SourceOptions
	}

	if err := service.DB.Model(&config).Updates(updates).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "更新管道配置失败",
		})
		return
	}

	c.reloadScheduler()

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "更新管道配置成功",
		Data:   config,
	})
}

// DeletePipeline 删除管道配置
// @Summary 删除管道配置
// @Description 删除管道配置并重建调度任务，历史监控记录不受影响
// @Tags 管道
// @Produce json
// @Param id path string true "管道ID"
// @Success 200 {object} APIResponse "删除成功"
// @Failure 404 {object} APIResponse "管道配置不存在"
// @Router /pipelines/{id} [delete]
func (c *PipelineController) DeletePipeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result := service.DB.Where("id = ?", id).Delete(&models.PipelineConfig{})
	if result.Error != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "删除管道配置失败",
		})
		return
	}
	if result.RowsAffected == 0 {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "管道配置不存在",
		})
		return
	}

	c.reloadScheduler()

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "删除管道配置成功",
	})
}

// TriggerPipeline 立即触发管道监控运行
// @Summary 立即触发管道监控运行
// @Description 按管道登记的数据源配置立即执行一次监控运行
// @Tags 管道
// @Produce json
// @Param id path string true "管道ID"
// @Success 200 {object} APIResponse{data=models.MonitoringRecord} "运行成功"
// @Failure 404 {object} APIResponse "管道配置不存在"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /pipelines/{id}/trigger [post]
func (c *PipelineController) TriggerPipeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var config models.PipelineConfig
	if err := service.DB.Where("id = ?", id).First(&config).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "管道配置不存在",
		})
		return
	}

	dataset, err := service.GlobalLoaderRegistry.Load(r.Context(), config.SourceType, config.SourceOptions)
	if err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "数据集加载失败: " + err.Error(),
		})
		return
	}

	record, err := service.GlobalMonitorService.Run(r.Context(), dataset, config.Name)
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

// reloadScheduler 配置变更后重建调度任务
func (c *PipelineController) reloadScheduler() {
	if service.GlobalSchedulerService == nil {
		return
	}
	if err := service.GlobalSchedulerService.Reload(); err != nil {
		// 重建失败不影响配置变更结果，下次启动时会重新加载
		return
	}
}
