package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/TechTatva-25/m-hash-backend/api/models"
	"github.com/TechTatva-25/m-hash-backend/logging"
	"github.com/TechTatva-25/m-hash-backend/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProgressController struct {
	progressStorage storage.ProgressStorage
	stageStorage    storage.StageStorage
	teamStorage     storage.TeamStorage
}

func NewProgressController(progressStorage storage.ProgressStorage, stageStorage storage.StageStorage, teamStorage storage.TeamStorage) *ProgressController {
	return &ProgressController{
		progressStorage: progressStorage,
		stageStorage:    stageStorage,
		teamStorage:     teamStorage,
	}
}

func (c *ProgressController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api")

	group.GET("/progress/:teamId", c.getProgress)
}

// createInitialProgress binds a new team to the currently open submission
// stage. No open window means registration is over, which blocks team
// creation entirely.
func (c *ProgressController) createInitialProgress(ctx context.Context, teamID string) (*storage.Progress, error) {
	stage, err := c.stageStorage.FindOpenByKind(ctx, storage.StageSubmission)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, storage.ErrNoOpenSubmissionWindow
		}
		return nil, err
	}
	// Unreachable given the filter above; kept as an invariant check.
	if stage.Kind != storage.StageSubmission {
		return nil, fmt.Errorf("expected submission stage, found %s", stage.Kind)
	}

	progress := &storage.Progress{
		ID:           uuid.NewString(),
		TeamID:       teamID,
		StageID:      stage.ID,
		Completed:    false,
		Disqualified: false,
		CreatedAt:    time.Now().UTC(),
		StageBoundAt: time.Now().UTC(),
	}
	if err := c.progressStorage.Create(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// deriveProgress recomputes the team's status from stage timing on every
// read. The persisted Completed flag only matters on the results path; the
// stored Disqualified flag is never consulted.
//
// The previous-stage identity comparison mirrors the system this replaces:
// it can only match when the bound stage is registration (the stage is its
// own "previous"), so disqualification keys off the registration window in
// practice. See the derivation tests for the asymmetry.
func deriveProgress(progress *storage.Progress, stage *storage.Stage, prev *storage.Stage, now time.Time) (completed, disqualified bool) {
	if stage.Active {
		return false, false
	}
	if stage.Kind == storage.StageResults && progress.Completed && stage.EndDate.Before(now) {
		return true, false
	}
	if prev != nil && prev.ID == progress.StageID && prev.EndDate.Before(now) {
		return false, true
	}
	return false, false
}

// getProgress godoc
// @Summary Get a team's derived progress
// @Description Returns the team's current stage plus completed/disqualified status recomputed from stage timing. Creates the initial progress record when missing.
// @Tags progress
// @Produce json
// @Param teamId path string true "Team ID"
// @Success 200 {object} models.ProgressResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "No open submission window"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/progress/{teamId} [get]
func (c *ProgressController) getProgress(g *gin.Context) {
	teamID := g.Param("teamId")
	if teamID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "team id is required"})
		return
	}

	ctx := g.Request.Context()

	if _, err := c.teamStorage.Get(ctx, teamID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "team not found"})
			return
		}
		logging.Log.Errorf("PROGRESS: failed to load team %s: %v", teamID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load team"})
		return
	}

	progress, err := c.progressStorage.GetByTeam(ctx, teamID)
	if errors.Is(err, storage.ErrNotFound) {
		progress, err = c.createInitialProgress(ctx, teamID)
		if err != nil {
			if errors.Is(err, storage.ErrNoOpenSubmissionWindow) {
				g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "no submission stage is currently open"})
				return
			}
			logging.Log.Errorf("PROGRESS: failed to create initial progress for team %s: %v", teamID, err)
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create progress"})
			return
		}
		logging.Log.Infof("PROGRESS: created initial progress for team %s", teamID)
	} else if err != nil {
		logging.Log.Errorf("PROGRESS: failed to load progress for team %s: %v", teamID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load progress"})
		return
	}

	completed, disqualified, stage, err := c.derive(ctx, progress)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "stage bound to progress not found"})
			return
		}
		logging.Log.Errorf("PROGRESS: failed to derive progress for team %s: %v", teamID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not derive progress"})
		return
	}

	g.JSON(http.StatusOK, models.TransformProgressFromStorage(progress, stage, completed, disqualified))
}

func (c *ProgressController) derive(ctx context.Context, progress *storage.Progress) (completed, disqualified bool, stage *storage.Stage, err error) {
	stage, err = c.stageStorage.Get(ctx, progress.StageID)
	if err != nil {
		return false, false, nil, err
	}

	var prev *storage.Stage
	if stage.Kind == storage.StageRegistration {
		prev = stage
	} else {
		prev, err = c.stageStorage.FindPrevious(ctx, stage.Kind)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return false, false, nil, err
		}
	}

	completed, disqualified = deriveProgress(progress, stage, prev, time.Now().UTC())
	return completed, disqualified, stage, nil
}
