/*
 * @module api/controllers/rule_controller
 * @description 自定义检测规则控制器，提供规则脚本的登记、校验、启停和删除API接口
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求处理流程：脚本校验 -> 入库 -> 下次检测生效
 * @rules 脚本入库前必须通过语法校验；规则名称唯一
 * @dependencies pipeline-monitor-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/monitor/custom_rules.go, api/routes.go
 */

package controllers

import (
	"net/http"

	"pipeline-monitor-service/service"
	"pipeline-monitor-service/service/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// RuleController 自定义检测规则控制器
type RuleController struct{}

// NewRuleController 创建自定义检测规则控制器实例
func NewRuleController() *RuleController {
	return &RuleController{}
}

// RuleValidateRequest 脚本校验请求结构
type RuleValidateRequest struct {
	Script string `json:"script"`
}

// CreateRule 登记自定义检测规则
// @Summary 登记自定义检测规则
// @Description 登记新的检测规则脚本，脚本内容为Check函数体，入库前做语法校验
// @Tags 检测规则
// @Accept json
// @Produce json
// @Param rule body models.CustomRuleScript true "规则脚本"
// @Success 201 {object} APIResponse{data=models.CustomRuleScript} "登记成功"
// @Failure 400 {object} APIResponse "请求参数错误或脚本校验失败"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /rules [post]
func (c *RuleController) CreateRule(w http.ResponseWriter, r *http.Request) {
	var rule models.CustomRuleScript
	if err := render.DecodeJSON(r.Body, &rule); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if rule.Name == "" || rule.Script == "" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "规则名称和脚本内容不能为空",
		})
		return
	}

	if err := service.GlobalRuleEngine.Validate(rule.Script); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "脚本校验失败: " + err.Error(),
		})
		return
	}

	if err := service.DB.Create(&rule).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "登记检测规则失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusCreated,
		Msg:    "登记检测规则成功",
		Data:   rule,
	})
}

// ValidateRule 校验规则脚本
// @Summary 校验规则脚本
// @Description 只做语法校验不入库，用于规则编辑时的预检
// @Tags 检测规则
// @Accept json
// @Produce json
// @Param request body RuleValidateRequest true "脚本内容"
// @Success 200 {object} APIResponse "校验通过"
// @Failure 400 {object} APIResponse "脚本校验失败"
// @Router /rules/validate [post]
func (c *RuleController) ValidateRule(w http.ResponseWriter, r *http.Request) {
	var req RuleValidateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if err := service.GlobalRuleEngine.Validate(req.Script); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "脚本校验失败: " + err.Error(),
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "脚本校验通过",
	})
}

// GetRules 获取检测规则列表
// @Summary 获取检测规则列表
// @Description 获取全部已登记的检测规则脚本
// @Tags 检测规则
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.CustomRuleScript} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /rules [get]
func (c *RuleController) GetRules(w http.ResponseWriter, r *http.Request) {
	var rules []models.CustomRuleScript
	if err := service.DB.Order("created_at ASC").Find(&rules).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取检测规则列表失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取检测规则列表成功",
		Data:   rules,
	})
}

// UpdateRule 更新检测规则
// @Summary 更新检测规则
// @Description 更新规则脚本或启停状态，脚本变更时重新校验
// @Tags 检测规则
// @Accept json
// @Produce json
// @Param id path string true "规则ID"
// @Param rule body models.CustomRuleScript true "规则脚本"
// @Success 200 {object} APIResponse{data=models.CustomRuleScript} "更新成功"
// @Failure 400 {object} APIResponse "脚本校验失败"
// @Failure 404 {object} APIResponse "检测规则不存在"
// @Router /rules/{id} [put]
func (c *RuleController) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var rule models.CustomRuleScript
	if err := service.DB.Where("id = ?", id).First(&rule).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "检测规则不存在",
		})
		return
	}

	var update models.CustomRuleScript
	if err := render.DecodeJSON(r.Body, &update); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	updates := map[string]interface{}{
		"is_enabled": update.IsEnabled,
	}
	if update.Script != "" {
		if err := service.GlobalRuleEngine.Validate(update.Script); err != nil {
			render.JSON(w, r, APIResponse{
				Status: http.StatusBadRequest,
				Msg:    "脚本校验失败: " + err.Error(),
			})
			return
		}
		updates["script"] = update.Script
	}

	if err := service.DB.Model(&rule).Updates(updates).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "更新检测规则失败",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "更新检测规则成功",
		Data:   rule,
	})
}

// DeleteRule 删除检测规则
// @Summary 删除检测规则
// @Description 删除检测规则脚本
// @Tags 检测规则
// @Produce json
// @Param id path string true "规则ID"
// @Success 200 {object} APIResponse "删除成功"
// @Failure 404 {object} APIResponse "检测规则不存在"
// @Router /rules/{id} [delete]
func (c *RuleController) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result := service.DB.Where("id = ?", id).Delete(&models.CustomRuleScript{})
	if result.Error != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "删除检测规则失败",
		})
		return
	}
	if result.RowsAffected == 0 {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "检测规则不存在",
		})
		return
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "删除检测规则成功",
	})
}
