package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/TechTatva-25/m-hash-backend/api/models"
	"github.com/TechTatva-25/m-hash-backend/api/transport"
	"github.com/TechTatva-25/m-hash-backend/logging"
	"github.com/TechTatva-25/m-hash-backend/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const teamCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

type TeamController struct {
	teamStorage       storage.TeamStorage
	progressStorage   storage.ProgressStorage
	submissionStorage storage.SubmissionStorage
	stageStorage      storage.StageStorage
}

func NewTeamController(teamStorage storage.TeamStorage, progressStorage storage.ProgressStorage, submissionStorage storage.SubmissionStorage, stageStorage storage.StageStorage) *TeamController {
	return &TeamController{
		teamStorage:       teamStorage,
		progressStorage:   progressStorage,
		submissionStorage: submissionStorage,
		stageStorage:      stageStorage,
	}
}

func (c *TeamController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/teams")

	group.GET("", c.getAll)
	group.GET("/:id", c.get)
	group.POST("", c.create)
	group.DELETE("/:id", transport.AdminAuthMiddleware(), c.delete)
}

// getAll godoc
// @Summary Get all teams
// @Tags teams
// @Produce json
// @Success 200 {array} models.TeamResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/teams [get]
func (c *TeamController) getAll(g *gin.Context) {
	teams, err := c.teamStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("TEAM: failed to get all teams: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load teams"})
		return
	}

	responses := make([]models.TeamResponse, 0, len(teams))
	for _, t := range teams {
		responses = append(responses, models.TransformTeamFromStorage(t))
	}
	g.JSON(http.StatusOK, responses)
}

// get godoc
// @Summary Get a team by ID
// @Tags teams
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} models.TeamResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/teams/{id} [get]
func (c *TeamController) get(g *gin.Context) {
	team, err := c.teamStorage.Get(g.Request.Context(), g.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "team not found"})
			return
		}
		logging.Log.Errorf("TEAM: failed to get team: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load team"})
		return
	}
	g.JSON(http.StatusOK, models.TransformTeamFromStorage(team))
}

// create godoc
// @Summary Create a team
// @Description Creating a team binds it to the open submission stage. When no submission window is open, registration is over and creation fails; a team is never left without progress.
// @Tags teams
// @Accept json
// @Produce json
// @Param team body models.TeamCreateRequest true "Team"
// @Success 201 {object} models.TeamResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "No open submission window"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/teams [post]
func (c *TeamController) create(g *gin.Context) {
	var req models.TeamCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.Name == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request, missing team name"})
		return
	}

	ctx := g.Request.Context()

	// Fail fast before creating anything.
	stage, err := c.stageStorage.FindOpenByKind(ctx, storage.StageSubmission)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "registration is closed, no submission stage is open"})
			return
		}
		logging.Log.Errorf("TEAM: failed to find open submission stage: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not check submission window"})
		return
	}

	team := &storage.Team{
		ID:        uuid.NewString(),
		Code:      c.generateTeamCode(),
		Name:      req.Name,
		Members:   req.Members,
		LeaderID:  req.LeaderID,
		College:   req.College,
		Bugs:      []storage.BugLedgerEntry{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := c.teamStorage.Create(ctx, team); err != nil {
		logging.Log.Errorf("TEAM: failed to create team: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create team"})
		return
	}

	progress := &storage.Progress{
		ID:           uuid.NewString(),
		TeamID:       team.ID,
		StageID:      stage.ID,
		CreatedAt:    time.Now().UTC(),
		StageBoundAt: time.Now().UTC(),
	}
	if err := c.progressStorage.Create(ctx, progress); err != nil {
		// Roll the team back so nothing is left in an unprogressable state.
		if delErr := c.teamStorage.Delete(ctx, team.ID); delErr != nil {
			logging.Log.Errorf("TEAM: rollback of team %s failed: %v", team.ID, delErr)
		}
		logging.Log.Errorf("TEAM: failed to create initial progress for team %s: %v", team.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create team progress"})
		return
	}

	logging.Log.Infof("TEAM: created team %s (%s) bound to stage %s", team.ID, team.Name, stage.ID)
	g.JSON(http.StatusCreated, models.TransformTeamFromStorage(team))
}

// @Security AdminToken
// delete godoc
// @Summary Delete a team and its dependent records
// @Tags teams
// @Produce json
// @Param id path string true "Team ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/teams/{id} [delete]
func (c *TeamController) delete(g *gin.Context) {
	id := g.Param("id")
	ctx := g.Request.Context()

	if _, err := c.teamStorage.Get(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "team not found"})
			return
		}
		logging.Log.Errorf("TEAM: failed to load team %s: %v", id, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load team"})
		return
	}

	if submission, err := c.submissionStorage.GetByTeam(ctx, id); err == nil {
		if err := c.submissionStorage.Delete(ctx, submission.ID); err != nil {
			logging.Log.Errorf("TEAM: failed to delete submission for team %s: %v", id, err)
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete team submission"})
			return
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		logging.Log.Errorf("TEAM: failed to check submission for team %s: %v", id, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not check team submission"})
		return
	}

	if err := c.progressStorage.DeleteByTeam(ctx, id); err != nil {
		logging.Log.Errorf("TEAM: failed to delete progress for team %s: %v", id, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete team progress"})
		return
	}

	if err := c.teamStorage.Delete(ctx, id); err != nil {
		logging.Log.Errorf("TEAM: failed to delete team %s: %v", id, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete team"})
		return
	}

	g.JSON(http.StatusOK, &models.MessageResponse{Message: "team deleted"})
}

func (c *TeamController) generateTeamCode() string {
	code, err := gonanoid.Generate(teamCodeAlphabet, 6)
	if err != nil {
		logging.Log.Errorf("TEAM: failed to generate team code: %v", err)
		return "ERROR"
	}
	return code
}
