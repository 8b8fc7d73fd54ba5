package models

import (
	"time"

	"github.com/TechTatva-25/m-hash-backend/storage"
)

// ProgressResponse carries the derived view: completed/disqualified come
// from the derivation on every read, never from storage.
type ProgressResponse struct {
	TeamID       string    `json:"teamId"`
	StageID      string    `json:"stageId"`
	Stage        string    `json:"stage"`
	Completed    bool      `json:"completed"`
	Disqualified bool      `json:"disqualified"`
	CreatedAt    time.Time `json:"createdAt"`
}

func TransformProgressFromStorage(p *storage.Progress, stage *storage.Stage, completed, disqualified bool) ProgressResponse {
	return ProgressResponse{
		TeamID:       p.TeamID,
		StageID:      p.StageID,
		Stage:        stage.Kind.String(),
		Completed:    completed,
		Disqualified: disqualified,
		CreatedAt:    p.CreatedAt,
	}
}
