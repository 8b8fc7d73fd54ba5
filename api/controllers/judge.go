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
)

type JudgeController struct {
	teamStorage       storage.TeamStorage
	submissionStorage storage.SubmissionStorage
}

func NewJudgeController(teamStorage storage.TeamStorage, submissionStorage storage.SubmissionStorage) *JudgeController {
	return &JudgeController{
		teamStorage:       teamStorage,
		submissionStorage: submissionStorage,
	}
}

func (c *JudgeController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/judge", transport.JudgeAuthMiddleware())

	group.POST("/score", c.updateTeamScore)
	group.POST("/bug-score", c.updateBugRoundScore)
	group.POST("/submissions/approve", c.approveSubmission)
	group.POST("/submissions/reject", c.rejectSubmission)
}

// @Security JudgeToken
// updateTeamScore godoc
// @Summary Upsert one cell of the judge score matrix
// @Description Creates the judge/round/category entries as needed; re-submitting an existing cell overwrites the score
// @Tags judge
// @Accept json
// @Produce json
// @Param score body models.JudgeScoreRequest true "Score cell"
// @Success 200 {object} models.TeamResponse
// @Failure 400 {object} models.ErrorResponse "Negative score"
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/judge/score [post]
func (c *JudgeController) updateTeamScore(g *gin.Context) {
	var req models.JudgeScoreRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.TeamID == "" || req.JudgeID == "" || req.RoundID == "" || req.CategoryID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}
	if req.Score < 0 {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "score must not be negative"})
		return
	}

	ctx := g.Request.Context()

	if err := c.teamStorage.UpsertJudgeScore(ctx, req.TeamID, req.JudgeID, req.RoundID, req.CategoryID, req.Score); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "team not found"})
			return
		}
		logging.Log.Errorf("JUDGE: failed to upsert score for team %s: %v", req.TeamID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update team score"})
		return
	}

	team, err := c.teamStorage.Get(ctx, req.TeamID)
	if err != nil {
		logging.Log.Errorf("JUDGE: failed to reload team %s: %v", req.TeamID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load team"})
		return
	}

	logging.Log.Infof("JUDGE: judge %s scored team %s round %s category %s = %d",
		req.JudgeID, req.TeamID, req.RoundID, req.CategoryID, req.Score)
	g.JSON(http.StatusOK, models.TransformTeamFromStorage(team))
}

// @Security JudgeToken
// updateBugRoundScore godoc
// @Summary Record a bug-round score event or restore the ledger
// @Description With restoreIdx set: -1 clears the team's ledger, k keeps entries at index >= k. Otherwise prepends a new cumulative snapshot.
// @Tags judge
// @Accept json
// @Produce json
// @Param score body models.BugRoundScoreRequest true "Score event or restore index"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/judge/bug-score [post]
func (c *JudgeController) updateBugRoundScore(g *gin.Context) {
	var req models.BugRoundScoreRequest
	if err := g.ShouldBindJSON(&req); err != nil || req.TeamID == "" {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	ctx := g.Request.Context()

	if req.RestoreIdx != nil {
		if err := c.teamStorage.TruncateBugLedger(ctx, req.TeamID, *req.RestoreIdx); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "team not found"})
				return
			}
			logging.Log.Errorf("JUDGE: failed to restore ledger for team %s: %v", req.TeamID, err)
			g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not restore ledger"})
			return
		}
		logging.Log.Infof("JUDGE: restored ledger for team %s to index %d", req.TeamID, *req.RestoreIdx)
		g.JSON(http.StatusOK, &models.MessageResponse{Message: "score restored"})
		return
	}

	if err := appendLedgerEvent(ctx, c.teamStorage, req.TeamID, req.Score); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, &models.ErrorResponse{Error: "team not found"})
			return
		}
		logging.Log.Errorf("JUDGE: failed to record bug-round score for team %s: %v", req.TeamID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update score"})
		return
	}

	logging.Log.Infof("JUDGE: recorded bug-round score %+d for team %s", req.Score, req.TeamID)
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "score updated"})
}

// @Security JudgeToken
// approveSubmission godoc
// @Summary Judge-approve a submission
// @Description Allowed only after admin approval; does not move the team's progress
// @Tags judge
// @Accept json
// @Produce json
// @Param decision body models.SubmissionDecisionRequest true "Submission to approve"
// @Success 200 {object} models.SubmissionResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Submission not admin-approved yet"
// @Router /api/judge/submissions/approve [post]
func (c *JudgeController) approveSubmission(g *gin.Context) {
	c.decideSubmission(g, storage.SubmissionJudgeApproved)
}

// @Security JudgeToken
// rejectSubmission godoc
// @Summary Judge-reject a submission
// @Description Allowed only after admin approval; does not move the team's progress
// @Tags judge
// @Accept json
// @Produce json
// @Param decision body models.SubmissionDecisionRequest true "Submission to reject"
// @Success 200 {object} models.SubmissionResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Submission not admin-approved yet"
// @Router /api/judge/submissions/reject [post]
func (c *JudgeController) rejectSubmission(g *gin.Context) {
	c.decideSubmission(g, storage.SubmissionJudgeRejected)
}

func (c *JudgeController) decideSubmission(g *gin.Context, status storage.SubmissionStatus) {
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
		logging.Log.Errorf("JUDGE: failed to load submission %s: %v", req.SubmissionID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not load submission"})
		return
	}

	// Judge decisions follow admin approval; re-deciding between the two
	// judge outcomes is allowed.
	switch submission.Status {
	case storage.SubmissionAdminApproved, storage.SubmissionJudgeApproved, storage.SubmissionJudgeRejected:
	default:
		g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "submission has not been admin-approved"})
		return
	}

	if err := c.submissionStorage.UpdateStatus(ctx, req.SubmissionID, status); err != nil {
		logging.Log.Errorf("JUDGE: failed to update submission %s: %v", req.SubmissionID, err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not update submission"})
		return
	}

	submission.Status = status
	submission.UpdatedAt = time.Now().UTC()
	logging.Log.Infof("JUDGE: submission %s marked %s", req.SubmissionID, status)
	g.JSON(http.StatusOK, models.TransformSubmissionFromStorage(submission))
}
