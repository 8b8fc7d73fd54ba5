package models

import (
	"time"

	"github.com/TechTatva-25/m-hash-backend/storage"
)

type SubmissionCreateRequest struct {
	TeamID             string `json:"teamId"`
	ProblemID          string `json:"problemId"`
	SubmissionURL      string `json:"submissionUrl"`
	SubmissionVideoURL string `json:"submissionVideoUrl"`
}

type SubmissionDecisionRequest struct {
	SubmissionID string `json:"submissionId"`
}

type JudgeScoreRequest struct {
	TeamID     string `json:"teamId"`
	JudgeID    string `json:"judgeId"`
	RoundID    string `json:"roundId"`
	CategoryID string `json:"categoryId"`
	Score      int    `json:"score"`
}

// BugRoundScoreRequest either prepends a scoring event (Score set) or
// restores the ledger to a checkpoint (RestoreIdx set).
type BugRoundScoreRequest struct {
	TeamID     string `json:"teamId"`
	Score      int    `json:"score"`
	RestoreIdx *int   `json:"restoreIdx"`
}

type SubmissionResponse struct {
	ID                 string    `json:"id"`
	TeamID             string    `json:"teamId"`
	ProblemID          string    `json:"problemId"`
	SubmissionURL      string    `json:"submissionUrl"`
	SubmissionVideoURL string    `json:"submissionVideoUrl"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func TransformSubmissionFromStorage(s *storage.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:                 s.ID,
		TeamID:             s.TeamID,
		ProblemID:          s.ProblemID,
		SubmissionURL:      s.SubmissionURL,
		SubmissionVideoURL: s.SubmissionVideoURL,
		Status:             string(s.Status),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// TransformSubmissionForTeamView masks the true review status behind the
// release_results switch: everything reads as under evaluation until results
// are released, then admin-approved shows as qualified and the rest as not
// qualified.
func TransformSubmissionForTeamView(s *storage.Submission, resultsReleased bool) SubmissionResponse {
	resp := TransformSubmissionFromStorage(s)
	if !resultsReleased {
		resp.Status = storage.DisplayUnderEval
		return resp
	}
	if s.Status == storage.SubmissionAdminApproved {
		resp.Status = storage.DisplayQualified
	} else {
		resp.Status = storage.DisplayRejected
	}
	return resp
}
