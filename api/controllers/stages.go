package controllers

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/TechTatva-25/m-hash-backend/api/models"
	"github.com/TechTatva-25/m-hash-backend/api/transport"
	"github.com/TechTatva-25/m-hash-backend/logging"
	"github.com/TechTatva-25/m-hash-backend/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StageMetaController struct {
	storage storage.StageStorage
}

func NewStageMetaController(s storage.StageStorage) *StageMetaController {
	return &StageMetaController{storage: s}
}

func (c *StageMetaController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/meta/stages")

	group.GET("", c.getAll)
	group.GET("/:id", c.get)
	group.POST("", transport.AdminAuthMiddleware(), c.create)
	group.PUT("/:id", transport.AdminAuthMiddleware(), c.update)
	group.DELETE("/:id", transport.AdminAuthMiddleware(), c.delete)
}

// getAll godoc
// @Summary Get all stages in pipeline order
// @Tags Meta/Stages
// @Produce json
// @Success 200 {array} models.StageResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/meta/stages [get]
func (c *StageMetaController) getAll(g *gin.Context) {
	stages, err := c.storage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("META: failed to get all stages: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load stages"})
		return
	}

	sort.Slice(stages, func(i, j int) bool { return stages[i].Kind < stages[j].Kind })

	responses := make([]models.StageResponse, 0, len(stages))
	for _, s := range stages {
		responses = append(responses, models.TransformStageFromStorage(s))
	}
	g.JSON(http.StatusOK, responses)
}

// get godoc
// @Summary Get a stage by ID
// @Tags Meta/Stages
// @Produce json
// @Param id path string true "Stage ID"
// @Success 200 {object} models.StageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/meta/stages/{id} [get]
func (c *StageMetaController) get(g *gin.Context) {
	stage, err := c.storage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "stage not found"})
			return
		}
		logging.Log.Errorf("META: failed to get stage: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load stage"})
		return
	}
	g.JSON(http.StatusOK, models.TransformStageFromStorage(stage))
}

// @Security AdminToken
// create godoc
// @Summary Create a stage
// @Tags Meta/Stages
// @Accept json
// @Produce json
// @Param stage body models.StageCreateRequest true "Stage object"
// @Success 201 {object} models.StageResponse
// @Failure 400 {object} models.ErrorResponse "Unknown stage name"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/meta/stages [post]
func (c *StageMetaController) create(g *gin.Context) {
	var req models.StageCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Name == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request, missing name"})
		return
	}

	kind, ok := storage.ParseStageKind(req.Stage)
	if !ok {
		logging.Log.Warnf("META: attempted to create stage with unknown kind: %s", req.Stage)
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "unknown stage"})
		return
	}

	stage := &storage.Stage{
		ID:          uuid.NewString(),
		Kind:        kind,
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := c.storage.Create(g.Request.Context(), stage); err != nil {
		logging.Log.Errorf("META: failed to create stage: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create stage"})
		return
	}
	g.JSON(http.StatusCreated, models.TransformStageFromStorage(stage))
}

// @Security AdminToken
// update godoc
// @Summary Update a stage's window or active flag
// @Tags Meta/Stages
// @Accept json
// @Produce json
// @Param id path string true "Stage ID"
// @Param stage body models.StageUpdateRequest true "Stage update object"
// @Success 200 {object} models.StageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/meta/stages/{id} [put]
func (c *StageMetaController) update(g *gin.Context) {
	id := g.Param("id")

	var req models.StageUpdateRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Name == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request, missing name"})
		return
	}

	ctx := g.Request.Context()
	stage, err := c.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "stage not found"})
			return
		}
		logging.Log.Errorf("META: failed to load stage %s: %v", id, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load stage"})
		return
	}

	stage.Name = req.Name
	stage.Description = req.Description
	stage.Active = req.Active
	stage.StartDate = req.StartDate
	stage.EndDate = req.EndDate
	stage.UpdatedAt = time.Now().UTC()

	if err := c.storage.Update(ctx, stage); err != nil {
		logging.Log.Errorf("META: failed to update stage %s: %v", id, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update stage"})
		return
	}
	g.JSON(http.StatusOK, models.TransformStageFromStorage(stage))
}

// @Security AdminToken
// delete godoc
// @Summary Delete a stage
// @Tags Meta/Stages
// @Produce json
// @Param id path string true "Stage ID"
// @Success 200 {object} models.MessageResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/meta/stages/{id} [delete]
func (c *StageMetaController) delete(g *gin.Context) {
	if err := c.storage.Delete(g.Request.Context(), g.Param("id")); err != nil {
		logging.Log.Errorf("META: failed to delete stage: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete stage"})
		return
	}
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "stage deleted"})
}
