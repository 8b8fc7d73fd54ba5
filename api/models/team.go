package models

import (
	"time"

	"github.com/TechTatva-25/m-hash-backend/storage"
)

type TeamCreateRequest struct {
	Name     string   `json:"name"`
	LeaderID string   `json:"leaderId"`
	Members  []string `json:"members"`
	College  string   `json:"college"`
}

type BugLedgerEntryResponse struct {
	Score     int       `json:"score"`
	BugCount  int       `json:"bugCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CategoryScoreResponse struct {
	CategoryID string `json:"categoryId"`
	Score      int    `json:"score"`
}

type RoundScoreResponse struct {
	RoundID        string                  `json:"roundId"`
	CategoryScores []CategoryScoreResponse `json:"categoryScores"`
}

type JudgeScoreResponse struct {
	JudgeID string               `json:"judgeId"`
	Scores  []RoundScoreResponse `json:"scores"`
}

type TeamResponse struct {
	ID         string                   `json:"id"`
	Code       string                   `json:"code"`
	Name       string                   `json:"name"`
	LeaderID   string                   `json:"leaderId"`
	Members    []string                 `json:"members"`
	College    string                   `json:"college"`
	Bugs       []BugLedgerEntryResponse `json:"bugs"`
	JudgeScore []JudgeScoreResponse     `json:"judgeScore"`
}

type LeaderboardEntry struct {
	TeamID   string `json:"teamId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	BugCount int    `json:"bugCount"`
}

type AdjustPointsRequest struct {
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

func TransformTeamFromStorage(t *storage.Team) TeamResponse {
	bugs := make([]BugLedgerEntryResponse, 0, len(t.Bugs))
	for _, b := range t.Bugs {
		bugs = append(bugs, BugLedgerEntryResponse{Score: b.Score, BugCount: b.BugCount, UpdatedAt: b.UpdatedAt})
	}

	judges := make([]JudgeScoreResponse, 0, len(t.JudgeScore))
	for _, js := range t.JudgeScore {
		rounds := make([]RoundScoreResponse, 0, len(js.Scores))
		for _, rs := range js.Scores {
			cats := make([]CategoryScoreResponse, 0, len(rs.CategoryScores))
			for _, cs := range rs.CategoryScores {
				cats = append(cats, CategoryScoreResponse{CategoryID: cs.CategoryID, Score: cs.Score})
			}
			rounds = append(rounds, RoundScoreResponse{RoundID: rs.RoundID, CategoryScores: cats})
		}
		judges = append(judges, JudgeScoreResponse{JudgeID: js.JudgeID, Scores: rounds})
	}

	return TeamResponse{
		ID:         t.ID,
		Code:       t.Code,
		Name:       t.Name,
		LeaderID:   t.LeaderID,
		Members:    t.Members,
		College:    t.College,
		Bugs:       bugs,
		JudgeScore: judges,
	}
}
