package controllers

import (
	"net/http"

	"github.com/TechTatva-25/m-hash-backend/api/models"
	"github.com/TechTatva-25/m-hash-backend/api/transport"
	"github.com/TechTatva-25/m-hash-backend/logging"
	"github.com/TechTatva-25/m-hash-backend/storage"
	"github.com/gin-gonic/gin"
)

type RuntimeConfigController struct {
	runtimeConfig storage.RuntimeConfigStorage
}

func NewRuntimeConfigController(s storage.RuntimeConfigStorage) *RuntimeConfigController {
	return &RuntimeConfigController{runtimeConfig: s}
}

func (c *RuntimeConfigController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/admin/config", transport.AdminAuthMiddleware())

	group.GET("/:key", c.getFlag)
	group.PUT("/:key", c.setFlag)
}

type flagResponse struct {
	Key   string `json:"key"`
	Value bool   `json:"value"`
}

type flagUpdateRequest struct {
	Value bool `json:"value"`
}

// @Security AdminToken
// getFlag godoc
// @Summary Read a runtime flag
// @Tags admin
// @Produce json
// @Param key path string true "Flag key"
// @Success 200 {object} flagResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/config/{key} [get]
func (c *RuntimeConfigController) getFlag(g *gin.Context) {
	key := g.Param("key")
	value, err := c.runtimeConfig.GetFlag(g.Request.Context(), key)
	if err != nil {
		logging.Log.Errorf("CONFIG: failed to read flag %s: %v", key, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not read flag"})
		return
	}
	g.JSON(http.StatusOK, flagResponse{Key: key, Value: value})
}

// @Security AdminToken
// setFlag godoc
// @Summary Toggle a runtime flag
// @Tags admin
// @Accept json
// @Produce json
// @Param key path string true "Flag key"
// @Param flag body flagUpdateRequest true "New value"
// @Success 200 {object} flagResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/config/{key} [put]
func (c *RuntimeConfigController) setFlag(g *gin.Context) {
	key := g.Param("key")

	var req flagUpdateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	if err := c.runtimeConfig.SetFlag(g.Request.Context(), key, req.Value); err != nil {
		logging.Log.Errorf("CONFIG: failed to set flag %s: %v", key, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not set flag"})
		return
	}

	logging.Log.Infof("CONFIG: flag %s set to %t", key, req.Value)
	g.JSON(http.StatusOK, flagResponse{Key: key, Value: req.Value})
}
