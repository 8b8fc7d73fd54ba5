package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	testutils "github.com/TechTatva-25/m-hash-backend/api/controllers/testing"
	"github.com/TechTatva-25/m-hash-backend/api/models"
	"github.com/TechTatva-25/m-hash-backend/logging"
	"github.com/TechTatva-25/m-hash-backend/storage"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submissionTestEnv struct {
	submissions *testutils.MemSubmissionStorage
	progress    *testutils.MemProgressStorage
	stages      *testutils.MemStageStorage
	teams       *testutils.MemTeamStorage
	flags       *testutils.MemRuntimeConfigStorage
	router      *gin.Engine
}

func setupSubmissionTestController(t *testing.T) *submissionTestEnv {
	t.Helper()
	logging.Log = logrus.New()
	t.Setenv("ADMIN_TOKEN", "secret")

	env := &submissionTestEnv{
		submissions: testutils.NewMemSubmissionStorage(),
		progress:    testutils.NewMemProgressStorage(),
		stages:      testutils.NewMemStageStorage(),
		teams:       testutils.NewMemTeamStorage(),
		flags:       testutils.NewMemRuntimeConfigStorage(),
	}

	require.NoError(t, env.stages.Create(context.TODO(), &storage.Stage{ID: "stage-qualifiers", Kind: storage.StageQualifiers, Name: "Qualifiers"}))
	require.NoError(t, env.stages.Create(context.TODO(), &storage.Stage{ID: "stage-finals", Kind: storage.StageFinals, Name: "Finals"}))
	require.NoError(t, env.teams.Create(context.TODO(), &storage.Team{ID: "team-1", Name: "Alpha"}))
	require.NoError(t, env.progress.Create(context.TODO(), &storage.Progress{ID: "team-1", TeamID: "team-1", StageID: "stage-submission"}))

	controller := NewSubmissionController(env.submissions, env.progress, env.stages, env.teams, env.flags)
	gin.SetMode(gin.TestMode)
	env.router = gin.New()
	controller.RegisterRoutes(env.router)
	return env
}

func TestCreateSubmission(t *testing.T) {
	validReq := models.SubmissionCreateRequest{
		TeamID:             "team-1",
		ProblemID:          "problem-7",
		SubmissionURL:      "https://github.com/team/repo",
		SubmissionVideoURL: "https://youtu.be/demo",
	}

	t.Run("Happy path - first submission is pending", func(t *testing.T) {
		env := setupSubmissionTestController(t)

		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/submissions", validReq, nil)
		require.Equal(t, http.StatusCreated, w.Code, "expected 201: %s", w.Body.String())

		var res models.SubmissionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, string(storage.SubmissionPending), res.Status)
		assert.Equal(t, "team-1", res.TeamID)
	})

	t.Run("Unhappy path - one submission per team", func(t *testing.T) {
		env := setupSubmissionTestController(t)

		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/submissions", validReq, nil)
		require.Equal(t, http.StatusCreated, w.Code)

		w = testutils.PerformRequest(env.router, http.MethodPost, "/api/submissions", validReq, nil)
		require.Equal(t, http.StatusConflict, w.Code, "expected 409: %s", w.Body.String())
	})

	t.Run("Unhappy path - bad video URL", func(t *testing.T) {
		env := setupSubmissionTestController(t)

		req := validReq
		req.SubmissionVideoURL = "not a url"
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/submissions", req, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unhappy path - unknown team", func(t *testing.T) {
		env := setupSubmissionTestController(t)

		req := validReq
		req.TeamID = "ghost"
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/submissions", req, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminSubmissionDecisions(t *testing.T) {
	adminHeaders := map[string]string{"x-admin-token": "secret"}

	seed := func(t *testing.T, env *submissionTestEnv) *storage.Submission {
		t.Helper()
		submission := &storage.Submission{ID: "sub-1", TeamID: "team-1", ProblemID: "p1", Status: storage.SubmissionPending}
		require.NoError(t, env.submissions.Create(context.TODO(), submission))
		return submission
	}

	t.Run("Happy path - approval moves the team to finals", func(t *testing.T) {
		env := setupSubmissionTestController(t)
		submission := seed(t, env)

		req := models.SubmissionDecisionRequest{SubmissionID: submission.ID}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/submissions/approve", req, adminHeaders)
		require.Equal(t, http.StatusOK, w.Code, "expected 200: %s", w.Body.String())

		stored, err := env.submissions.Get(context.TODO(), submission.ID)
		require.NoError(t, err)
		assert.Equal(t, storage.SubmissionAdminApproved, stored.Status)

		progress, err := env.progress.GetByTeam(context.TODO(), "team-1")
		require.NoError(t, err)
		assert.Equal(t, "stage-finals", progress.StageID)
		assert.False(t, progress.Completed, "decision must not touch the persisted flags")
		assert.False(t, progress.Disqualified)
	})

	t.Run("Happy path - rejection moves the team back to qualifiers", func(t *testing.T) {
		env := setupSubmissionTestController(t)
		submission := seed(t, env)

		req := models.SubmissionDecisionRequest{SubmissionID: submission.ID}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/submissions/reject", req, adminHeaders)
		require.Equal(t, http.StatusOK, w.Code)

		stored, err := env.submissions.Get(context.TODO(), submission.ID)
		require.NoError(t, err)
		assert.Equal(t, storage.SubmissionAdminRejected, stored.Status)

		progress, err := env.progress.GetByTeam(context.TODO(), "team-1")
		require.NoError(t, err)
		assert.Equal(t, "stage-qualifiers", progress.StageID)
	})

	t.Run("Unhappy path - unknown submission", func(t *testing.T) {
		env := setupSubmissionTestController(t)

		req := models.SubmissionDecisionRequest{SubmissionID: "missing"}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/submissions/approve", req, adminHeaders)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Unhappy path - finals stage missing", func(t *testing.T) {
		env := setupSubmissionTestController(t)
		submission := seed(t, env)
		require.NoError(t, env.stages.Delete(context.TODO(), "stage-finals"))

		req := models.SubmissionDecisionRequest{SubmissionID: submission.ID}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/submissions/approve", req, adminHeaders)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Unhappy path - no admin token", func(t *testing.T) {
		env := setupSubmissionTestController(t)

		req := models.SubmissionDecisionRequest{SubmissionID: "sub-1"}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/submissions/approve", req, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTeamSubmissionView(t *testing.T) {
	seed := func(t *testing.T, env *submissionTestEnv, status storage.SubmissionStatus) {
		t.Helper()
		require.NoError(t, env.submissions.Create(context.TODO(), &storage.Submission{
			ID: "sub-1", TeamID: "team-1", ProblemID: "p1", Status: status,
		}))
	}

	fetchStatus := func(t *testing.T, env *submissionTestEnv) string {
		t.Helper()
		w := testutils.PerformRequest(env.router, http.MethodGet, "/api/submissions/team/team-1", nil, nil)
		require.Equal(t, http.StatusOK, w.Code, "expected 200: %s", w.Body.String())
		var res models.SubmissionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		return res.Status
	}

	t.Run("Happy path - everything reads under evaluation before release", func(t *testing.T) {
		env := setupSubmissionTestController(t)
		seed(t, env, storage.SubmissionAdminApproved)

		assert.Equal(t, storage.DisplayUnderEval, fetchStatus(t, env))
	})

	t.Run("Happy path - admin-approved shows qualified after release", func(t *testing.T) {
		env := setupSubmissionTestController(t)
		seed(t, env, storage.SubmissionAdminApproved)
		require.NoError(t, env.flags.SetFlag(context.TODO(), storage.FlagReleaseResults, true))

		assert.Equal(t, storage.DisplayQualified, fetchStatus(t, env))
	})

	t.Run("Happy path - every other status shows not qualified after release", func(t *testing.T) {
		env := setupSubmissionTestController(t)
		seed(t, env, storage.SubmissionJudgeRejected)
		require.NoError(t, env.flags.SetFlag(context.TODO(), storage.FlagReleaseResults, true))

		assert.Equal(t, storage.DisplayRejected, fetchStatus(t, env))
	})

	t.Run("Unhappy path - no submission for team", func(t *testing.T) {
		env := setupSubmissionTestController(t)

		w := testutils.PerformRequest(env.router, http.MethodGet, "/api/submissions/team/team-1", nil, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteTeamSubmission(t *testing.T) {
	t.Run("Happy path - delete by team", func(t *testing.T) {
		env := setupSubmissionTestController(t)
		require.NoError(t, env.submissions.Create(context.TODO(), &storage.Submission{
			ID: "sub-1", TeamID: "team-1", ProblemID: "p1", Status: storage.SubmissionPending,
		}))

		w := testutils.PerformRequest(env.router, http.MethodDelete, "/api/submissions/team/team-1", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		_, err := env.submissions.GetByTeam(context.TODO(), "team-1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Unhappy path - nothing to delete", func(t *testing.T) {
		env := setupSubmissionTestController(t)

		w := testutils.PerformRequest(env.router, http.MethodDelete, "/api/submissions/team/team-1", nil, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}
