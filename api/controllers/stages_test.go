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

func setupStageTestController(t *testing.T) (*testutils.MemStageStorage, *gin.Engine) {
	t.Helper()
	logging.Log = logrus.New()
	t.Setenv("ADMIN_TOKEN", "secret")

	stages := testutils.NewMemStageStorage()
	controller := NewStageMetaController(stages)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	controller.RegisterRoutes(router)
	return stages, router
}

func TestCreateStage(t *testing.T) {
	adminHeaders := map[string]string{"x-admin-token": "secret"}

	t.Run("Happy path - create a submission stage", func(t *testing.T) {
		_, router := setupStageTestController(t)

		req := models.StageCreateRequest{
			Stage:     "submission",
			Name:      "Idea Submission",
			Active:    true,
			StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		}
		w := testutils.PerformRequest(router, http.MethodPost, "/api/meta/stages", req, adminHeaders)
		require.Equal(t, http.StatusCreated, w.Code, "expected 201: %s", w.Body.String())

		var res models.StageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "submission", res.Stage)
		assert.Equal(t, 1, res.Ordinal)
		assert.NotEmpty(t, res.ID)
	})

	t.Run("Unhappy path - unknown stage kind", func(t *testing.T) {
		_, router := setupStageTestController(t)

		req := models.StageCreateRequest{Stage: "semifinals", Name: "Semis"}
		w := testutils.PerformRequest(router, http.MethodPost, "/api/meta/stages", req, adminHeaders)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unhappy path - no admin token", func(t *testing.T) {
		_, router := setupStageTestController(t)

		req := models.StageCreateRequest{Stage: "submission", Name: "Idea Submission"}
		w := testutils.PerformRequest(router, http.MethodPost, "/api/meta/stages", req, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetStages(t *testing.T) {
	t.Run("Happy path - stages come back in pipeline order", func(t *testing.T) {
		stages, router := setupStageTestController(t)

		require.NoError(t, stages.Create(context.TODO(), &storage.Stage{ID: "s-results", Kind: storage.StageResults, Name: "Results"}))
		require.NoError(t, stages.Create(context.TODO(), &storage.Stage{ID: "s-reg", Kind: storage.StageRegistration, Name: "Registration"}))
		require.NoError(t, stages.Create(context.TODO(), &storage.Stage{ID: "s-finals", Kind: storage.StageFinals, Name: "Finals"}))

		w := testutils.PerformRequest(router, http.MethodGet, "/api/meta/stages", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var res []models.StageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		require.Len(t, res, 3)
		assert.Equal(t, "registration", res[0].Stage)
		assert.Equal(t, "finals", res[1].Stage)
		assert.Equal(t, "results", res[2].Stage)
	})

	t.Run("Unhappy path - unknown stage ID", func(t *testing.T) {
		_, router := setupStageTestController(t)

		w := testutils.PerformRequest(router, http.MethodGet, "/api/meta/stages/ghost", nil, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateStage(t *testing.T) {
	adminHeaders := map[string]string{"x-admin-token": "secret"}

	t.Run("Happy path - update window and active flag", func(t *testing.T) {
		stages, router := setupStageTestController(t)
		require.NoError(t, stages.Create(context.TODO(), &storage.Stage{
			ID: "s1", Kind: storage.StageSubmission, Name: "Submission", Active: true,
		}))

		req := models.StageUpdateRequest{
			Name:    "Submission Extended",
			Active:  false,
			EndDate: time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
		}
		w := testutils.PerformRequest(router, http.MethodPut, "/api/meta/stages/s1", req, adminHeaders)
		require.Equal(t, http.StatusOK, w.Code, "expected 200: %s", w.Body.String())

		stored, err := stages.Get(context.TODO(), "s1")
		require.NoError(t, err)
		assert.Equal(t, "Submission Extended", stored.Name)
		assert.False(t, stored.Active)
		assert.Equal(t, storage.StageSubmission, stored.Kind, "the kind is immutable")
	})

	t.Run("Unhappy path - unknown stage", func(t *testing.T) {
		_, router := setupStageTestController(t)

		req := models.StageUpdateRequest{Name: "Whatever"}
		w := testutils.PerformRequest(router, http.MethodPut, "/api/meta/stages/ghost", req, adminHeaders)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteStage(t *testing.T) {
	adminHeaders := map[string]string{"x-admin-token": "secret"}

	t.Run("Happy path - delete is idempotent", func(t *testing.T) {
		stages, router := setupStageTestController(t)
		require.NoError(t, stages.Create(context.TODO(), &storage.Stage{ID: "s1", Kind: storage.StageSubmission, Name: "Submission"}))

		w := testutils.PerformRequest(router, http.MethodDelete, "/api/meta/stages/s1", nil, adminHeaders)
		require.Equal(t, http.StatusOK, w.Code)

		w = testutils.PerformRequest(router, http.MethodDelete, "/api/meta/stages/s1", nil, adminHeaders)
		require.Equal(t, http.StatusOK, w.Code, "expected 200 for idempotent delete")
	})
}
