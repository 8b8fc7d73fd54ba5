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

type BugsController struct {
	bugStorage     storage.BugStorage
	bugTypeStorage storage.BugTypeStorage
	teamStorage    storage.TeamStorage
}

func NewBugsController(bugStorage storage.BugStorage, bugTypeStorage storage.BugTypeStorage, teamStorage storage.TeamStorage) *BugsController {
	return &BugsController{
		bugStorage:     bugStorage,
		bugTypeStorage: bugTypeStorage,
		teamStorage:    teamStorage,
	}
}

func (c *BugsController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/bugs")

	group.POST("", c.reportBug)
	group.GET("", c.listBugs)
	group.GET("/:id", c.getBug)
	group.PUT("/:id", transport.AdminAuthMiddleware(), c.editBug)

	admin := engine.Group("/api/admin", transport.AdminAuthMiddleware())
	admin.POST("/bug-types", c.createBugType)
	admin.PUT("/bug-types/:name", c.updateBugType)
	admin.POST("/teams/:id/points", c.adjustTeamPoints)

	engine.GET("/api/bug-types", c.listBugTypes)
	engine.GET("/api/leaderboard", c.leaderboard)
}

// reportBug godoc
// @Summary Report a bug against another team
// @Description Creates a bug report and applies its score effect to both ledgers when the status warrants it
// @Tags bugs
// @Accept json
// @Produce json
// @Param bug body models.BugReportRequest true "Bug report"
// @Success 201 {object} models.BugResponse
// @Failure 400 {object} models.ErrorResponse "Unknown category or bad status"
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/bugs [post]
func (c *BugsController) reportBug(g *gin.Context) {
	var req models.BugReportRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Category == "" || req.ReportedByTeamID == "" || req.FoundInTeamID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	status := storage.BugStatus(req.Status)
	if req.Status == "" {
		status = storage.BugPending
	}
	if !status.Valid() {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid bug status"})
		return
	}

	ctx := g.Request.Context()

	points, err := c.resolvePoints(g, req.PointsAwarded, req.Category)
	if err != nil {
		return
	}

	bug := &storage.Bug{
		ID:               uuid.NewString(),
		Category:         req.Category,
		ReportedByTeamID: req.ReportedByTeamID,
		FoundInTeamID:    req.FoundInTeamID,
		Status:           status,
		PointsAwarded:    points,
		AdminNotes:       req.AdminNotes,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	if err := c.bugStorage.Create(ctx, bug); err != nil {
		logging.Log.Errorf("BUGS: failed to create bug report: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create bug report"})
		return
	}

	if err := applyBugStatusEffect(ctx, c.teamStorage, status, req.ReportedByTeamID, req.FoundInTeamID, points); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "team not found"})
			return
		}
		logging.Log.Errorf("BUGS: failed to apply score effect for bug %s: %v", bug.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update team scores"})
		return
	}

	logging.Log.Infof("BUGS: bug %s reported by team %s against team %s (%s, %d points)",
		bug.ID, bug.ReportedByTeamID, bug.FoundInTeamID, bug.Status, bug.PointsAwarded)
	g.JSON(http.StatusCreated, models.TransformBugFromStorage(bug))
}

// editBug godoc
// @Summary Edit a bug report
// @Description Undoes the old status effect and applies the new one as independent ledger events, then updates the report
// @Tags bugs
// @Accept json
// @Produce json
// @Param id path string true "Bug ID"
// @Param bug body models.BugEditRequest true "Fields to change"
// @Success 200 {object} models.BugResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/bugs/{id} [put]
func (c *BugsController) editBug(g *gin.Context) {
	id := g.Param("id")

	var req models.BugEditRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	ctx := g.Request.Context()

	original, err := c.bugStorage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "bug not found"})
			return
		}
		logging.Log.Errorf("BUGS: failed to load bug %s: %v", id, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load bug"})
		return
	}

	newCategory := original.Category
	if req.Category != nil {
		newCategory = *req.Category
	}
	newStatus := original.Status
	if req.Status != nil {
		newStatus = storage.BugStatus(*req.Status)
		if !newStatus.Valid() {
			g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid bug status"})
			return
		}
	}

	// A category change re-resolves points from the bug type unless the
	// caller pinned them explicitly.
	newPoints := original.PointsAwarded
	if req.PointsAwarded != nil {
		newPoints = *req.PointsAwarded
	} else if req.Category != nil {
		newPoints, err = c.resolvePoints(g, nil, newCategory)
		if err != nil {
			return
		}
	}

	if err := undoBugStatusEffect(ctx, c.teamStorage, original.Status, original.ReportedByTeamID, original.FoundInTeamID, original.PointsAwarded); err != nil {
		logging.Log.Errorf("BUGS: failed to undo score effect for bug %s: %v", id, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update team scores"})
		return
	}
	if err := applyBugStatusEffect(ctx, c.teamStorage, newStatus, original.ReportedByTeamID, original.FoundInTeamID, newPoints); err != nil {
		logging.Log.Errorf("BUGS: failed to apply new score effect for bug %s: %v", id, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update team scores"})
		return
	}

	original.Category = newCategory
	original.Status = newStatus
	original.PointsAwarded = newPoints
	if req.AdminNotes != nil {
		original.AdminNotes = *req.AdminNotes
	}
	original.UpdatedAt = time.Now().UTC()

	if err := c.bugStorage.Update(ctx, original); err != nil {
		logging.Log.Errorf("BUGS: failed to update bug %s: %v", id, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update bug"})
		return
	}

	logging.Log.Infof("BUGS: bug %s edited to %s (%d points)", id, original.Status, original.PointsAwarded)
	g.JSON(http.StatusOK, models.TransformBugFromStorage(original))
}

// listBugs godoc
// @Summary List all bug reports
// @Tags bugs
// @Produce json
// @Success 200 {array} models.BugResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/bugs [get]
func (c *BugsController) listBugs(g *gin.Context) {
	bugs, err := c.bugStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("BUGS: failed to list bugs: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not list bugs"})
		return
	}

	responses := make([]models.BugResponse, 0, len(bugs))
	for _, b := range bugs {
		responses = append(responses, models.TransformBugFromStorage(b))
	}
	g.JSON(http.StatusOK, responses)
}

// getBug godoc
// @Summary Get a bug report by ID
// @Tags bugs
// @Produce json
// @Param id path string true "Bug ID"
// @Success 200 {object} models.BugResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/bugs/{id} [get]
func (c *BugsController) getBug(g *gin.Context) {
	bug, err := c.bugStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "bug not found"})
			return
		}
		logging.Log.Errorf("BUGS: failed to get bug: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load bug"})
		return
	}
	g.JSON(http.StatusOK, models.TransformBugFromStorage(bug))
}

// @Security AdminToken
// createBugType godoc
// @Summary Create a bug type
// @Tags bugs
// @Accept json
// @Produce json
// @Param bugType body models.BugTypeCreateRequest true "Bug type"
// @Success 201 {object} models.BugTypeResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/admin/bug-types [post]
func (c *BugsController) createBugType(g *gin.Context) {
	var req models.BugTypeCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Name == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request, missing name"})
		return
	}

	bugType := &storage.BugType{Name: req.Name, DefaultPoints: req.DefaultPoints}
	if err := c.bugTypeStorage.Create(g.Request.Context(), bugType); err != nil {
		if errors.Is(err, storage.ErrItemAlreadyExists) {
			g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "bug type already exists"})
			return
		}
		logging.Log.Errorf("BUGS: failed to create bug type: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create bug type"})
		return
	}
	g.JSON(http.StatusCreated, models.TransformBugTypeFromStorage(bugType))
}

// @Security AdminToken
// updateBugType godoc
// @Summary Update a bug type's default points
// @Tags bugs
// @Accept json
// @Produce json
// @Param name path string true "Bug type name"
// @Param bugType body models.BugTypeUpdateRequest true "New defaults"
// @Success 200 {object} models.BugTypeResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/admin/bug-types/{name} [put]
func (c *BugsController) updateBugType(g *gin.Context) {
	name := g.Param("name")

	var req models.BugTypeUpdateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	ctx := g.Request.Context()
	bugType, err := c.bugTypeStorage.Get(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "bug type not found"})
			return
		}
		logging.Log.Errorf("BUGS: failed to load bug type %s: %v", name, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load bug type"})
		return
	}

	bugType.DefaultPoints = req.DefaultPoints
	if err := c.bugTypeStorage.Update(ctx, bugType); err != nil {
		logging.Log.Errorf("BUGS: failed to update bug type %s: %v", name, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update bug type"})
		return
	}
	g.JSON(http.StatusOK, models.TransformBugTypeFromStorage(bugType))
}

// listBugTypes godoc
// @Summary List all bug types
// @Tags bugs
// @Produce json
// @Success 200 {array} models.BugTypeResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/bug-types [get]
func (c *BugsController) listBugTypes(g *gin.Context) {
	bugTypes, err := c.bugTypeStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("BUGS: failed to list bug types: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not list bug types"})
		return
	}

	responses := make([]models.BugTypeResponse, 0, len(bugTypes))
	for _, bt := range bugTypes {
		responses = append(responses, models.TransformBugTypeFromStorage(bt))
	}
	g.JSON(http.StatusOK, responses)
}

// @Security AdminToken
// adjustTeamPoints godoc
// @Summary Manually adjust a team's bug-bounty score
// @Description Applies a delta to the current ledger head in place, with a reason for the audit log
// @Tags bugs
// @Accept json
// @Produce json
// @Param id path string true "Team ID"
// @Param adjustment body models.AdjustPointsRequest true "Points delta and reason"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/admin/teams/{id}/points [post]
func (c *BugsController) adjustTeamPoints(g *gin.Context) {
	teamID := g.Param("id")

	var req models.AdjustPointsRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	if err := c.teamStorage.IncrementBugLedgerHead(g.Request.Context(), teamID, req.Points); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "team not found or ledger empty"})
			return
		}
		logging.Log.Errorf("BUGS: failed to adjust points for team %s: %v", teamID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not adjust points"})
		return
	}

	logging.Log.Infof("BUGS: adjusted team %s by %d points, reason: %s", teamID, req.Points, req.Reason)
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "points adjusted"})
}

// leaderboard godoc
// @Summary Bug-bounty leaderboard
// @Description Teams ordered by current ledger head score, descending
// @Tags bugs
// @Produce json
// @Success 200 {array} models.LeaderboardEntry
// @Failure 500 {object} models.ErrorResponse
// @Router /api/leaderboard [get]
func (c *BugsController) leaderboard(g *gin.Context) {
	teams, err := c.teamStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("BUGS: failed to load teams for leaderboard: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load teams"})
		return
	}

	entries := make([]models.LeaderboardEntry, 0, len(teams))
	for _, t := range teams {
		head := t.LedgerHead()
		entries = append(entries, models.LeaderboardEntry{
			TeamID:   t.ID,
			Name:     t.Name,
			Score:    head.Score,
			BugCount: head.BugCount,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })

	g.JSON(http.StatusOK, entries)
}

func (c *BugsController) resolvePoints(g *gin.Context, explicit *int, category string) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}

	bugType, err := c.bugTypeStorage.Get(g.Request.Context(), category)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid bug category"})
			return 0, err
		}
		logging.Log.Errorf("BUGS: failed to resolve bug type %s: %v", category, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not resolve bug category"})
		return 0, err
	}
	return bugType.DefaultPoints, nil
}
