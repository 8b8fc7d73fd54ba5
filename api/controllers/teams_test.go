package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	testutils "github.com/TechTatva-25/m-hash-backend/api/controllers/testing"
	"github.com/TechTatva-25/m-hash-backend/api/models"
	"github.com/TechTatva-25/m-hash-backend/logging"
	"github.com/TechTatva-25/m-hash-backend/storage"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type teamTestEnv struct {
	teams       *testutils.MemTeamStorage
	progress    *testutils.MemProgressStorage
	submissions *testutils.MemSubmissionStorage
	stages      *testutils.MemStageStorage
	router      *gin.Engine
}

func setupTeamTestController(t *testing.T) *teamTestEnv {
	t.Helper()
	logging.Log = logrus.New()
	t.Setenv("ADMIN_TOKEN", "secret")

	env := &teamTestEnv{
		teams:       testutils.NewMemTeamStorage(),
		progress:    testutils.NewMemProgressStorage(),
		submissions: testutils.NewMemSubmissionStorage(),
		stages:      testutils.NewMemStageStorage(),
	}

	controller := NewTeamController(env.teams, env.progress, env.submissions, env.stages)
	gin.SetMode(gin.TestMode)
	env.router = gin.New()
	controller.RegisterRoutes(env.router)
	return env
}

func (env *teamTestEnv) openSubmissionWindow(t *testing.T) *storage.Stage {
	t.Helper()
	stage := &storage.Stage{
		ID:      "stage-submission",
		Kind:    storage.StageSubmission,
		Name:    "Submission",
		EndDate: time.Now().UTC().Add(48 * time.Hour),
	}
	require.NoError(t, env.stages.Create(context.TODO(), stage))
	return stage
}

func TestCreateTeam(t *testing.T) {
	t.Run("Happy path - team is bound to the open submission stage", func(t *testing.T) {
		env := setupTeamTestController(t)
		stage := env.openSubmissionWindow(t)

		req := models.TeamCreateRequest{
			Name:     "Alpha",
			LeaderID: "leader-1",
			Members:  []string{"leader-1", "member-2"},
			College:  "MIT Manipal",
		}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/teams", req, nil)
		require.Equal(t, http.StatusCreated, w.Code, "expected 201: %s", w.Body.String())

		var res models.TeamResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "Alpha", res.Name)
		assert.Len(t, res.Code, 6)
		assert.Empty(t, res.Bugs)

		progress, err := env.progress.GetByTeam(context.TODO(), res.ID)
		require.NoError(t, err, "team creation must also create progress")
		assert.Equal(t, stage.ID, progress.StageID)
	})

	t.Run("Unhappy path - registration closed", func(t *testing.T) {
		env := setupTeamTestController(t)

		// The only submission stage already ended.
		require.NoError(t, env.stages.Create(context.TODO(), &storage.Stage{
			ID:      "stage-closed",
			Kind:    storage.StageSubmission,
			EndDate: time.Now().UTC().Add(-48 * time.Hour),
		}))

		req := models.TeamCreateRequest{Name: "Latecomers"}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/teams", req, nil)
		require.Equal(t, http.StatusConflict, w.Code, "expected 409: %s", w.Body.String())

		teams, err := env.teams.GetAll(context.TODO())
		require.NoError(t, err)
		assert.Empty(t, teams, "no team must be created when registration is closed")
	})

	t.Run("Unhappy path - missing name", func(t *testing.T) {
		env := setupTeamTestController(t)
		env.openSubmissionWindow(t)

		req := models.TeamCreateRequest{Name: ""}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/teams", req, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetTeams(t *testing.T) {
	t.Run("Happy path - get by ID and get all", func(t *testing.T) {
		env := setupTeamTestController(t)
		require.NoError(t, env.teams.Create(context.TODO(), &storage.Team{ID: "team-1", Name: "Alpha"}))
		require.NoError(t, env.teams.Create(context.TODO(), &storage.Team{ID: "team-2", Name: "Beta"}))

		w := testutils.PerformRequest(env.router, http.MethodGet, "/api/teams/team-1", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var res models.TeamResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "Alpha", res.Name)

		w = testutils.PerformRequest(env.router, http.MethodGet, "/api/teams", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var all []models.TeamResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
		assert.Len(t, all, 2)
	})

	t.Run("Unhappy path - unknown team", func(t *testing.T) {
		env := setupTeamTestController(t)

		w := testutils.PerformRequest(env.router, http.MethodGet, "/api/teams/ghost", nil, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteTeam(t *testing.T) {
	adminHeaders := map[string]string{"x-admin-token": "secret"}

	t.Run("Happy path - delete cascades to submission and progress", func(t *testing.T) {
		env := setupTeamTestController(t)
		require.NoError(t, env.teams.Create(context.TODO(), &storage.Team{ID: "team-1", Name: "Alpha"}))
		require.NoError(t, env.progress.Create(context.TODO(), &storage.Progress{ID: "team-1", TeamID: "team-1", StageID: "s1"}))
		require.NoError(t, env.submissions.Create(context.TODO(), &storage.Submission{ID: "sub-1", TeamID: "team-1", ProblemID: "p1"}))

		w := testutils.PerformRequest(env.router, http.MethodDelete, "/api/teams/team-1", nil, adminHeaders)
		require.Equal(t, http.StatusOK, w.Code, "expected 200: %s", w.Body.String())

		_, err := env.teams.Get(context.TODO(), "team-1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = env.progress.GetByTeam(context.TODO(), "team-1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = env.submissions.GetByTeam(context.TODO(), "team-1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Unhappy path - unknown team", func(t *testing.T) {
		env := setupTeamTestController(t)

		w := testutils.PerformRequest(env.router, http.MethodDelete, "/api/teams/ghost", nil, adminHeaders)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Unhappy path - no admin token", func(t *testing.T) {
		env := setupTeamTestController(t)
		require.NoError(t, env.teams.Create(context.TODO(), &storage.Team{ID: "team-1", Name: "Alpha"}))

		w := testutils.PerformRequest(env.router, http.MethodDelete, "/api/teams/team-1", nil, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
