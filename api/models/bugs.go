package models

import (
	"time"

	"github.com/TechTatva-25/m-hash-backend/storage"
)

type BugReportRequest struct {
	Category         string `json:"category"`
	ReportedByTeamID string `json:"reportedByTeamId"`
	FoundInTeamID    string `json:"foundInTeamId"`
	Status           string `json:"status"`
	PointsAwarded    *int   `json:"pointsAwarded"`
	AdminNotes       string `json:"adminNotes"`
}

// BugEditRequest uses pointers so an absent field keeps the current value.
type BugEditRequest struct {
	Category      *string `json:"category"`
	Status        *string `json:"status"`
	PointsAwarded *int    `json:"pointsAwarded"`
	AdminNotes    *string `json:"adminNotes"`
}

type BugResponse struct {
	ID               string    `json:"id"`
	Category         string    `json:"category"`
	ReportedByTeamID string    `json:"reportedByTeamId"`
	FoundInTeamID    string    `json:"foundInTeamId"`
	Status           string    `json:"status"`
	PointsAwarded    int       `json:"pointsAwarded"`
	AdminNotes       string    `json:"adminNotes"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type BugTypeCreateRequest struct {
	Name          string `json:"name"`
	DefaultPoints int    `json:"defaultPoints"`
}

type BugTypeUpdateRequest struct {
	DefaultPoints int `json:"defaultPoints"`
}

type BugTypeResponse struct {
	Name          string `json:"name"`
	DefaultPoints int    `json:"defaultPoints"`
}

func TransformBugFromStorage(b *storage.Bug) BugResponse {
	return BugResponse{
		ID:               b.ID,
		Category:         b.Category,
		ReportedByTeamID: b.ReportedByTeamID,
		FoundInTeamID:    b.FoundInTeamID,
		Status:           string(b.Status),
		PointsAwarded:    b.PointsAwarded,
		AdminNotes:       b.AdminNotes,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func TransformBugTypeFromStorage(bt *storage.BugType) BugTypeResponse {
	return BugTypeResponse{
		Name:          bt.Name,
		DefaultPoints: bt.DefaultPoints,
	}
}
