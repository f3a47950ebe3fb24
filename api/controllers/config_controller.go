/*
 * @module api/controllers/config_controller
 * @description 系统配置控制器，提供系统配置项的读写API接口，密文配置项入库前加密、出库时脱敏
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求处理流程：参数解析 -> 加密/脱敏 -> 统一响应
 * @rules is_secret配置项的明文不会出现在任何响应中
 * @dependencies pipeline-monitor-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/utils/crypto_utils.go, api/routes.go
 */

package controllers

import (
	"net/http"

	"pipeline-monitor-service/service"
	"pipeline-monitor-service/service/models"
	"pipeline-monitor-service/service/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// ConfigController 系统配置控制器
type ConfigController struct{}

// NewConfigController 创建系统配置控制器实例
func NewConfigController() *ConfigController {
	return &ConfigController{}
}

// SetConfig 写入系统配置项
// @Summary 写入系统配置项
// @Description 写入或覆盖系统配置项，is_secret为true时配置值加密存储
// @Tags 系统配置
// @Accept json
// @Produce json
// @Param config body models.SystemConfig true "配置项"
// @Success 200 {object} APIResponse{data=models.SystemConfig} "写入成功"
// @Failure 400 {object} APIResponse "请求参数错误"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /config [post]
func (c *ConfigController) SetConfig(w http.ResponseWriter, r *http.Request) {
	var config models.SystemConfig
	if err := render.DecodeJSON(r.Body, &config); err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "请求参数格式错误",
		})
		return
	}

	if config.ConfigKey == "" {
		render.JSON(w, r, APIResponse{
			Status: http.StatusBadRequest,
			Msg:    "配置键不能为空",
		})
		return
	}

	if config.IsSecret {
		encrypted, err := service.GlobalCryptoUtils.AESEncrypt(config.ConfigValue)
		if err != nil {
			render.JSON(w, r, APIResponse{
				Status: http.StatusInternalServerError,
				Msg:    "配置值加密失败",
			})
			return
		}
		config.ConfigValue = encrypted
	}

	var existing models.SystemConfig
	err := service.DB.Where("config_key = ?", config.ConfigKey).First(&existing).Error
	if err == nil {
		updates := map[string]interface{}{
			"config_value": config.ConfigValue,
			"is_secret":    config.IsSecret,
			"description":  config.Description,
		}
		if err := service.DB.Model(&existing).Updates(updates).Error; err != nil {
			render.JSON(w, r, APIResponse{
				Status: http.StatusInternalServerError,
				Msg:    "更新系统配置失败",
			})
			return
		}
		config = existing
	} else {
		if err := service.DB.Create(&config).Error; err != nil {
			render.JSON(w, r, APIResponse{
				Status: http.StatusInternalServerError,
				Msg:    "写入系统配置失败",
			})
			return
		}
	}

	config.ConfigValue = maskIfSecret(&config)
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "写入系统配置成功",
		Data:   config,
	})
}

// GetConfigs 获取系统配置列表
// @Summary 获取系统配置列表
// @Description 获取全部系统配置项，密文配置值脱敏展示
// @Tags 系统配置
// @Produce json
// @Success 200 {object} APIResponse{data=[]models.SystemConfig} "获取成功"
// @Failure 500 {object} APIResponse "服务器内部错误"
// @Router /config [get]
func (c *ConfigController) GetConfigs(w http.ResponseWriter, r *http.Request) {
	var configs []models.SystemConfig
	if err := service.DB.Order("config_key ASC").Find(&configs).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusInternalServerError,
			Msg:    "获取系统配置列表失败",
		})
		return
	}

	for i := range configs {
		configs[i].ConfigValue = maskIfSecret(&configs[i])
	}

	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取系统配置列表成功",
		Data:   configs,
	})
}

// GetConfig 根据键获取系统配置项
// @Summary 根据键获取系统配置项
// @Description 根据配置键获取配置项，密文配置值脱敏展示
// @Tags 系统配置
// @Produce json
// @Param key path string true "配置键"
// @Success 200 {object} APIResponse{data=models.SystemConfig} "获取成功"
// @Failure 404 {object} APIResponse "配置项不存在"
// @Router /config/{key} [get]
func (c *ConfigController) GetConfig(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var config models.SystemConfig
	if err := service.DB.Where("config_key = ?", key).First(&config).Error; err != nil {
		render.JSON(w, r, APIResponse{
			Status: http.StatusNotFound,
			Msg:    "配置项不存在",
		})
		return
	}

	config.ConfigValue = maskIfSecret(&config)
	render.JSON(w, r, APIResponse{
		Status: http.StatusOK,
		Msg:    "获取系统配置成功",
		Data:   config,
	})
}

// maskIfSecret 密文配置项解密后脱敏，解密失败时整体打码
func maskIfSecret(config *models.SystemConfig) string {
	if !config.IsSecret {
		return config.ConfigValue
	}
	plaintext, err := service.GlobalCryptoUtils.AESDecrypt(config.ConfigValue)
	if err != nil {
		return "********"
	}
	return utils.MaskSecret(plaintext)
}
