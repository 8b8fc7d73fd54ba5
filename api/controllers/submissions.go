package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/TechTatva-25/m-hash-backend/api/models"
	"github.com/TechTatva-25/m-hash-backend/api/transport"
	"github.com/TechTatva-25/m-hash-backend/logging"
	"github.com/TechTatva-25/m-hash-backend/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SubmissionController struct {
	submissionStorage storage.SubmissionStorage
	progressStorage   storage.ProgressStorage
	stageStorage      storage.StageStorage
	teamStorage       storage.TeamStorage
	runtimeConfig     storage.RuntimeConfigStorage
}

func NewSubmissionController(
	submissionStorage storage.SubmissionStorage,
	progressStorage storage.ProgressStorage,
	stageStorage storage.StageStorage,
	teamStorage storage.TeamStorage,
	runtimeConfig storage.RuntimeConfigStorage,
) *SubmissionController {
	return &SubmissionController{
		submissionStorage: submissionStorage,
		progressStorage:   progressStorage,
		stageStorage:      stageStorage,
		teamStorage:       teamStorage,
		runtimeConfig:     runtimeConfig,
	}
}

func (c *SubmissionController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/submissions")

	group.POST("", c.create)
	group.GET("/team/:teamId", c.getForTeam)
	group.DELETE("/team/:teamId", c.deleteForTeam)

	admin := engine.Group("/api/admin/submissions", transport.AdminAuthMiddleware())
	admin.GET("", c.listAll)
	admin.POST("/approve", c.adminApprove)
	admin.POST("/reject", c.adminReject)
}

// create godoc
// @Summary Create a team's submission
// @Description One submission per team; a second create conflicts
// @Tags submissions
// @Accept json
// @Produce json
// @Param submission body models.SubmissionCreateRequest true "Submission"
// @Success 201 {object} models.SubmissionResponse
// @Failure 400 {object} models.ErrorResponse "Invalid video URL"
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Submission already exists"
// @Router /api/submissions [post]
func (c *SubmissionController) create(g *gin.Context) {
	var req models.SubmissionCreateRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.TeamID == "" || req.ProblemID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}
	if !isHTTPURL(req.SubmissionVideoURL) {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid demo video URL"})
		return
	}

	ctx := g.Request.Context()

	if _, err := c.teamStorage.Get(ctx, req.TeamID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "team not found"})
			return
		}
		logging.Log.Errorf("SUBMISSION: failed to load team %s: %v", req.TeamID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load team"})
		return
	}

	if _, err := c.submissionStorage.GetByTeam(ctx, req.TeamID); err == nil {
		g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "submission already exists"})
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		logging.Log.Errorf("SUBMISSION: existence check for team %s failed: %v", req.TeamID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not check existing submission"})
		return
	}

	submission := &storage.Submission{
		ID:                 uuid.NewString(),
		TeamID:             req.TeamID,
		ProblemID:          req.ProblemID,
		SubmissionURL:      req.SubmissionURL,
		SubmissionVideoURL: req.SubmissionVideoURL,
		Status:             storage.SubmissionPending,
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}
	if err := c.submissionStorage.Create(ctx, submission); err != nil {
		logging.Log.Errorf("SUBMISSION: failed to create submission for team %s: %v", req.TeamID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create submission"})
		return
	}

	logging.Log.Infof("SUBMISSION: team %s submitted for problem %s", req.TeamID, req.ProblemID)
	g.JSON(http.StatusCreated, models.TransformSubmissionFromStorage(submission))
}

// getForTeam godoc
// @Summary Get a team's submission with display status
// @Description The review outcome is masked as "Under Evaluation" until the release_results flag is on
// @Tags submissions
// @Produce json
// @Param teamId path string true "Team ID"
// @Success 200 {object} models.SubmissionResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/submissions/team/{teamId} [get]
func (c *SubmissionController) getForTeam(g *gin.Context) {
	teamID := g.Param("teamId")
	ctx := g.Request.Context()

	submission, err := c.submissionStorage.GetByTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "submission not found"})
			return
		}
		logging.Log.Errorf("SUBMISSION: failed to load submission for team %s: %v", teamID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load submission"})
		return
	}

	released, err := c.runtimeConfig.GetFlag(ctx, storage.FlagReleaseResults)
	if err != nil {
		logging.Log.Errorf("SUBMISSION: failed to read release flag: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not read runtime config"})
		return
	}

	g.JSON(http.StatusOK, models.TransformSubmissionForTeamView(submission, released))
}

// deleteForTeam godoc
// @Summary Delete a team's submission
// @Tags submissions
// @Produce json
// @Param teamId path string true "Team ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/submissions/team/{teamId} [delete]
func (c *SubmissionController) deleteForTeam(g *gin.Context) {
	teamID := g.Param("teamId")
	ctx := g.Request.Context()

	submission, err := c.submissionStorage.GetByTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "submission not found"})
			return
		}
		logging.Log.Errorf("SUBMISSION: failed to load submission for team %s: %v", teamID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load submission"})
		return
	}

	if err := c.submissionStorage.Delete(ctx, submission.ID); err != nil {
		logging.Log.Errorf("SUBMISSION: failed to delete submission %s: %v", submission.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not delete submission"})
		return
	}

	logging.Log.Infof("SUBMISSION: deleted submission for team %s", teamID)
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "submission deleted"})
}

// @Security AdminToken
// listAll godoc
// @Summary List all submissions with their true status
// @Tags submissions
// @Produce json
// @Success 200 {array} models.SubmissionResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/submissions [get]
func (c *SubmissionController) listAll(g *gin.Context) {
	submissions, err := c.submissionStorage.GetAll(g.Request.Context())
	if err != nil {
		logging.Log.Errorf("SUBMISSION: failed to list submissions: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not list submissions"})
		return
	}

	responses := make([]models.SubmissionResponse, 0, len(submissions))
	for _, s := range submissions {
		responses = append(responses, models.TransformSubmissionFromStorage(s))
	}
	g.JSON(http.StatusOK, responses)
}

// @Security AdminToken
// adminApprove godoc
// @Summary Admin-approve a submission
// @Description Marks the submission admin-approved and rebinds the team's progress to the finals stage
// @Tags submissions
// @Accept json
// @Produce json
// @Param decision body models.SubmissionDecisionRequest true "Submission to approve"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse "Submission or finals stage missing"
// @Router /api/admin/submissions/approve [post]
func (c *SubmissionController) adminApprove(g *gin.Context) {
	c.decide(g, storage.SubmissionAdminApproved, storage.StageFinals, "submission approved")
}

// @Security AdminToken
// adminReject godoc
// @Summary Admin-reject a submission
// @Description Marks the submission admin-rejected and rebinds the team's progress back to the qualifiers stage
// @Tags submissions
// @Accept json
// @Produce json
// @Param decision body models.SubmissionDecisionRequest true "Submission to reject"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse "Submission or qualifiers stage missing"
// @Router /api/admin/submissions/reject [post]
func (c *SubmissionController) adminReject(g *gin.Context) {
	c.decide(g, storage.SubmissionAdminRejected, storage.StageQualifiers, "submission rejected")
}

// decide sets the review status and moves the team's stage pointer. This is
// the only coupling between the submission machine and the progress engine:
// an admin decision is what advances (or demotes) a team past submission.
func (c *SubmissionController) decide(g *gin.Context, status storage.SubmissionStatus, nextKind storage.StageKind, message string) {
	var req models.SubmissionDecisionRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.SubmissionID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "submission id is required"})
		return
	}

	ctx := g.Request.Context()

	submission, err := c.submissionStorage.Get(ctx, req.SubmissionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "submission not found"})
			return
		}
		logging.Log.Errorf("SUBMISSION: failed to load submission %s: %v", req.SubmissionID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load submission"})
		return
	}

	if err := c.submissionStorage.UpdateStatus(ctx, submission.ID, status); err != nil {
		logging.Log.Errorf("SUBMISSION: failed to update status for %s: %v", submission.ID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update submission"})
		return
	}

	nextStage, err := c.stageStorage.FindByKind(ctx, nextKind)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "next stage not found"})
			return
		}
		logging.Log.Errorf("SUBMISSION: failed to find %s stage: %v", nextKind, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not find next stage"})
		return
	}

	if err := c.progressStorage.RebindStage(ctx, submission.TeamID, nextStage.ID); err != nil {
		logging.Log.Errorf("SUBMISSION: failed to rebind progress for team %s: %v", submission.TeamID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update team progress"})
		return
	}

	logging.Log.Infof("SUBMISSION: %s %s, team %s moved to %s", req.SubmissionID, status, submission.TeamID, nextStage.Kind)
	g.JSON(http.StatusOK, &models.MessageResponse{Message: message})
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
