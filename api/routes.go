/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @stateFlow 无状态HTTP请求处理
 * @rules 遵循RESTful API设计规范，统一错误处理和响应格式；写操作路由挂API密钥认证
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs api/controllers
 */

package api

import (
	"pipeline-monitor-service/api/controllers"
	custommiddleware "pipeline-monitor-service/api/middleware"
	"pipeline-monitor-service/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r *chi.Mux) {
	// 基础中间件
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController()
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 监控运行管理
	r.Route("/monitoring", func(r chi.Router) {
		monitoringController := controllers.NewMonitoringController()

		r.With(custommiddleware.APIKeyAuth, custommiddleware.RateLimit(service.GlobalRateLimiter)).
			Post("/run", monitoringController.RunMonitoring)
		r.Get("/history", monitoringController.GetMonitoringHistory)
		r.Get("/history/{id}", monitoringController.GetMonitoringRecord)
	})

	// 审批管理
	r.Route("/approvals", func(r chi.Router) {
		approvalController := controllers.NewApprovalController()

		r.Get("/", approvalController.GetApprovalHistory)
		r.Get("/pending", approvalController.ListPendingApprovals)
		r.Get("/{id}", approvalController.GetApproval)
		r.With(custommiddleware.APIKeyAuth).Post("/{id}/decision", approvalController.DecideApproval)
	})

	// 管道配置管理
	r.Route("/pipelines", func(r chi.Router) {
		pipelineController := controllers.NewPipelineController()

		r.Get("/", pipelineController.GetPipelines)
		r.Get("/{id}", pipelineController.GetPipeline)

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.APIKeyAuth)
			r.Post("/", pipelineController.CreatePipeline)
			r.Put("/{id}", pipelineController.UpdatePipeline)
			r.Delete("/{id}", pipelineController.DeletePipeline)
			r.With(custommiddleware.RateLimit(service.GlobalRateLimiter)).
				Post("/{id}/trigger", pipelineController.TriggerPipeline)
		})
	})

	// 自定义检测规则管理
	r.Route("/rules", func(r chi.Router) {
		ruleController := controllers.NewRuleController()

		r.Get("/", ruleController.GetRules)
		r.Post("/validate", ruleController.ValidateRule)

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.APIKeyAuth)
			r.Post("/", ruleController.CreateRule)
			r.Put("/{id}", ruleController.UpdateRule)
			r.Delete("/{id}", ruleController.DeleteRule)
		})
	})

	// 系统配置管理
	r.Route("/config", func(r chi.Router) {
		configController := controllers.NewConfigController()

		r.Get("/", configController.GetConfigs)
		r.Get("/{key}", configController.GetConfig)
		r.With(custommiddleware.APIKeyAuth).Post("/", configController.SetConfig)
	})
}
