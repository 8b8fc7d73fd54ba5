package models

import (
	"time"

	"github.com/TechTatva-25/m-hash-backend/storage"
)

type StageCreateRequest struct {
	Stage       string    `json:"stage"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

type StageUpdateRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

type StageResponse struct {
	ID          string    `json:"id"`
	Stage       string    `json:"stage"`
	Ordinal     int       `json:"ordinal"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

func TransformStageFromStorage(s *storage.Stage) StageResponse {
	return StageResponse{
		ID:          s.ID,
		Stage:       s.Kind.String(),
		Ordinal:     int(s.Kind),
		Name:        s.Name,
		Description: s.Description,
		Active:      s.Active,
		StartDate:   s.StartDate,
		EndDate:     s.EndDate,
	}
}
