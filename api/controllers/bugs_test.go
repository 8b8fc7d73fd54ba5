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

type bugsTestEnv struct {
	bugs     *testutils.MemBugStorage
	bugTypes *testutils.MemBugTypeStorage
	teams    *testutils.MemTeamStorage
	router   *gin.Engine
}

func setupBugsTestController(t *testing.T) *bugsTestEnv {
	t.Helper()
	logging.Log = logrus.New()
	t.Setenv("ADMIN_TOKEN", "secret")

	env := &bugsTestEnv{
		bugs:     testutils.NewMemBugStorage(),
		bugTypes: testutils.NewMemBugTypeStorage(),
		teams:    testutils.NewMemTeamStorage(),
	}

	require.NoError(t, env.bugTypes.Create(context.TODO(), &storage.BugType{Name: "security", DefaultPoints: 10}))
	require.NoError(t, env.bugTypes.Create(context.TODO(), &storage.BugType{Name: "ui", DefaultPoints: 3}))
	require.NoError(t, env.teams.Create(context.TODO(), &storage.Team{ID: "reporter", Name: "Reporters", Bugs: []storage.BugLedgerEntry{}}))
	require.NoError(t, env.teams.Create(context.TODO(), &storage.Team{ID: "target", Name: "Targets", Bugs: []storage.BugLedgerEntry{}}))

	controller := NewBugsController(env.bugs, env.bugTypes, env.teams)
	gin.SetMode(gin.TestMode)
	env.router = gin.New()
	controller.RegisterRoutes(env.router)
	return env
}

func (env *bugsTestEnv) ledger(t *testing.T, teamID string) []storage.BugLedgerEntry {
	t.Helper()
	team, err := env.teams.Get(context.TODO(), teamID)
	require.NoError(t, err)
	return team.Bugs
}

func TestReportBug(t *testing.T) {
	t.Run("Happy path - valid bug pays the reporter and penalizes the target", func(t *testing.T) {
		env := setupBugsTestController(t)

		req := models.BugReportRequest{
			Category:         "security",
			ReportedByTeamID: "reporter",
			FoundInTeamID:    "target",
			Status:           "valid",
		}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/bugs", req, nil)
		require.Equal(t, http.StatusCreated, w.Code, "expected 201: %s", w.Body.String())

		var res models.BugResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, 10, res.PointsAwarded, "points should resolve from the bug type")

		reporter := env.ledger(t, "reporter")
		require.Len(t, reporter, 1)
		assert.Equal(t, 10, reporter[0].Score)
		assert.Equal(t, 1, reporter[0].BugCount)

		target := env.ledger(t, "target")
		require.Len(t, target, 1)
		assert.Equal(t, -10, target[0].Score)
		assert.Equal(t, 1, target[0].BugCount)
	})

	t.Run("Happy path - repeated valid bugs accumulate at the ledger head", func(t *testing.T) {
		env := setupBugsTestController(t)

		req := models.BugReportRequest{
			Category:         "security",
			ReportedByTeamID: "reporter",
			FoundInTeamID:    "target",
			Status:           "valid",
		}
		for i := 0; i < 3; i++ {
			w := testutils.PerformRequest(env.router, http.MethodPost, "/api/bugs", req, nil)
			require.Equal(t, http.StatusCreated, w.Code, "report %d failed: %s", i, w.Body.String())
		}

		reporter := env.ledger(t, "reporter")
		require.Len(t, reporter, 3, "each event prepends a new snapshot")
		assert.Equal(t, 30, reporter[0].Score)
		assert.Equal(t, 3, reporter[0].BugCount)
		assert.Equal(t, 10, reporter[2].Score, "oldest snapshot stays untouched")
	})

	t.Run("Happy path - pending bug scores nothing", func(t *testing.T) {
		env := setupBugsTestController(t)

		req := models.BugReportRequest{
			Category:         "ui",
			ReportedByTeamID: "reporter",
			FoundInTeamID:    "target",
		}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/bugs", req, nil)
		require.Equal(t, http.StatusCreated, w.Code)

		assert.Empty(t, env.ledger(t, "reporter"))
		assert.Empty(t, env.ledger(t, "target"))
	})

	t.Run("Happy path - invalid bug penalizes the reporter only", func(t *testing.T) {
		env := setupBugsTestController(t)

		req := models.BugReportRequest{
			Category:         "ui",
			ReportedByTeamID: "reporter",
			FoundInTeamID:    "target",
			Status:           "invalid",
		}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/bugs", req, nil)
		require.Equal(t, http.StatusCreated, w.Code)

		reporter := env.ledger(t, "reporter")
		require.Len(t, reporter, 1)
		assert.Equal(t, -3, reporter[0].Score)
		assert.Empty(t, env.ledger(t, "target"))
	})

	t.Run("Happy path - explicit points override the bug type default", func(t *testing.T) {
		env := setupBugsTestController(t)

		points := 25
		req := models.BugReportRequest{
			Category:         "security",
			ReportedByTeamID: "reporter",
			FoundInTeamID:    "target",
			Status:           "valid",
			PointsAwarded:    &points,
		}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/bugs", req, nil)
		require.Equal(t, http.StatusCreated, w.Code)

		reporter := env.ledger(t, "reporter")
		require.Len(t, reporter, 1)
		assert.Equal(t, 25, reporter[0].Score)
	})

	t.Run("Unhappy path - unknown category", func(t *testing.T) {
		env := setupBugsTestController(t)

		req := models.BugReportRequest{
			Category:         "nonexistent",
			ReportedByTeamID: "reporter",
			FoundInTeamID:    "target",
		}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/bugs", req, nil)
		require.Equal(t, http.StatusBadRequest, w.Code, "expected 400: %s", w.Body.String())
	})

	t.Run("Unhappy path - bad status", func(t *testing.T) {
		env := setupBugsTestController(t)

		req := models.BugReportRequest{
			Category:         "security",
			ReportedByTeamID: "reporter",
			FoundInTeamID:    "target",
			Status:           "maybe",
		}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/bugs", req, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEditBug(t *testing.T) {
	adminHeaders := map[string]string{"x-admin-token": "secret"}

	t.Run("Happy path - flipping valid to invalid undoes and reapplies", func(t *testing.T) {
		env := setupBugsTestController(t)

		report := models.BugReportRequest{
			Category:         "security",
			ReportedByTeamID: "reporter",
			FoundInTeamID:    "target",
			Status:           "valid",
		}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/bugs", report, nil)
		require.Equal(t, http.StatusCreated, w.Code)

		var created models.BugResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		newStatus := "invalid"
		edit := models.BugEditRequest{Status: &newStatus}
		w = testutils.PerformRequest(env.router, http.MethodPut, "/api/bugs/"+created.ID, edit, adminHeaders)
		require.Equal(t, http.StatusOK, w.Code, "expected 200: %s", w.Body.String())

		// Undo of the valid effect plus the fresh invalid effect lands the
		// reporter at -10 across two new snapshots.
		reporter := env.ledger(t, "reporter")
		require.Len(t, reporter, 3)
		assert.Equal(t, -10, reporter[0].Score)
		assert.Equal(t, 3, reporter[0].BugCount)

		target := env.ledger(t, "target")
		require.Len(t, target, 2)
		assert.Equal(t, 0, target[0].Score)

		bug, err := env.bugs.Get(context.TODO(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, storage.BugInvalid, bug.Status)
	})

	t.Run("Happy path - category change re-resolves points", func(t *testing.T) {
		env := setupBugsTestController(t)

		report := models.BugReportRequest{
			Category:         "ui",
			ReportedByTeamID: "reporter",
			FoundInTeamID:    "target",
		}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/bugs", report, nil)
		require.Equal(t, http.StatusCreated, w.Code)

		var created models.BugResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		newCategory := "security"
		edit := models.BugEditRequest{Category: &newCategory}
		w = testutils.PerformRequest(env.router, http.MethodPut, "/api/bugs/"+created.ID, edit, adminHeaders)
		require.Equal(t, http.StatusOK, w.Code)

		var edited models.BugResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &edited))
		assert.Equal(t, 10, edited.PointsAwarded)
	})

	t.Run("Unhappy path - missing bug", func(t *testing.T) {
		env := setupBugsTestController(t)

		newStatus := "valid"
		edit := models.BugEditRequest{Status: &newStatus}
		w := testutils.PerformRequest(env.router, http.MethodPut, "/api/bugs/missing", edit, adminHeaders)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Unhappy path - no admin token", func(t *testing.T) {
		env := setupBugsTestController(t)

		newStatus := "valid"
		edit := models.BugEditRequest{Status: &newStatus}
		w := testutils.PerformRequest(env.router, http.MethodPut, "/api/bugs/whatever", edit, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdjustTeamPoints(t *testing.T) {
	adminHeaders := map[string]string{"x-admin-token": "secret"}

	t.Run("Happy path - delta lands on the ledger head in place", func(t *testing.T) {
		env := setupBugsTestController(t)

		require.NoError(t, env.teams.PrependBugLedgerEntry(context.TODO(), "reporter", storage.BugLedgerEntry{Score: 10, BugCount: 1}))

		req := models.AdjustPointsRequest{Points: 5, Reason: "manual correction"}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/teams/reporter/points", req, adminHeaders)
		require.Equal(t, http.StatusOK, w.Code, "expected 200: %s", w.Body.String())

		ledger := env.ledger(t, "reporter")
		require.Len(t, ledger, 1, "adjustment must not add a snapshot")
		assert.Equal(t, 15, ledger[0].Score)
		assert.Equal(t, 1, ledger[0].BugCount)
	})

	t.Run("Unhappy path - empty ledger", func(t *testing.T) {
		env := setupBugsTestController(t)

		req := models.AdjustPointsRequest{Points: 5}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/teams/reporter/points", req, adminHeaders)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Unhappy path - no admin token", func(t *testing.T) {
		env := setupBugsTestController(t)

		req := models.AdjustPointsRequest{Points: 5}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/teams/reporter/points", req, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestLeaderboard(t *testing.T) {
	t.Run("Happy path - ordered by current head score", func(t *testing.T) {
		env := setupBugsTestController(t)

		require.NoError(t, env.teams.PrependBugLedgerEntry(context.TODO(), "reporter", storage.BugLedgerEntry{Score: 5, BugCount: 1}))
		require.NoError(t, env.teams.PrependBugLedgerEntry(context.TODO(), "target", storage.BugLedgerEntry{Score: 20, BugCount: 2}))

		w := testutils.PerformRequest(env.router, http.MethodGet, "/api/leaderboard", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var entries []models.LeaderboardEntry
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
		require.Len(t, entries, 2)
		assert.Equal(t, "target", entries[0].TeamID)
		assert.Equal(t, 20, entries[0].Score)
		assert.Equal(t, "reporter", entries[1].TeamID)
	})
}

func TestBugTypes(t *testing.T) {
	adminHeaders := map[string]string{"x-admin-token": "secret"}

	t.Run("Happy path - create and list", func(t *testing.T) {
		env := setupBugsTestController(t)

		req := models.BugTypeCreateRequest{Name: "performance", DefaultPoints: 7}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/bug-types", req, adminHeaders)
		require.Equal(t, http.StatusCreated, w.Code, "expected 201: %s", w.Body.String())

		w = testutils.PerformRequest(env.router, http.MethodGet, "/api/bug-types", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var types []models.BugTypeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &types))
		assert.Len(t, types, 3)
	})

	t.Run("Happy path - update default points", func(t *testing.T) {
		env := setupBugsTestController(t)

		req := models.BugTypeUpdateRequest{DefaultPoints: 42}
		w := testutils.PerformRequest(env.router, http.MethodPut, "/api/admin/bug-types/security", req, adminHeaders)
		require.Equal(t, http.StatusOK, w.Code)

		var res models.BugTypeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, 42, res.DefaultPoints)
	})

	t.Run("Unhappy path - duplicate name", func(t *testing.T) {
		env := setupBugsTestController(t)

		req := models.BugTypeCreateRequest{Name: "security", DefaultPoints: 1}
		w := testutils.PerformRequest(env.router, http.MethodPost, "/api/admin/bug-types", req, adminHeaders)
		require.Equal(t, http.StatusConflict, w.Code)
	})
}
