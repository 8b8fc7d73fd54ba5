package testing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TechTatva-25/m-hash-backend/storage"
)

// In-memory storage fakes so controller tests run without DynamoDB or
// redis. They mirror the semantics of the Dynamo implementations, including
// the single-document ledger and matrix update operations.

type MemStageStorage struct {
	mu     sync.Mutex
	Stages map[string]*storage.Stage
}

func NewMemStageStorage() *MemStageStorage {
	return &MemStageStorage{Stages: make(map[string]*storage.Stage)}
}

func (s *MemStageStorage) Get(_ context.Context, id string) (*storage.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stage, ok := s.Stages[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *stage
	return &cp, nil
}

func (s *MemStageStorage) GetAll(_ context.Context) ([]*storage.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*storage.Stage, 0, len(s.Stages))
	for _, stage := range s.Stages {
		cp := *stage
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemStageStorage) Create(_ context.Context, stage *storage.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Stages[stage.ID]; ok {
		return storage.ErrItemAlreadyExists
	}
	cp := *stage
	s.Stages[stage.ID] = &cp
	return nil
}

func (s *MemStageStorage) Update(_ context.Context, stage *storage.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *stage
	s.Stages[stage.ID] = &cp
	return nil
}

func (s *MemStageStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Stages, id)
	return nil
}

func (s *MemStageStorage) FindOpenByKind(_ context.Context, kind storage.StageKind) (*storage.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, stage := range s.Stages {
		if stage.Kind == kind && !stage.EndDate.Before(now) {
			cp := *stage
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *MemStageStorage) FindByKind(_ context.Context, kind storage.StageKind) (*storage.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stage := range s.Stages {
		if stage.Kind == kind {
			cp := *stage
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *MemStageStorage) FindPrevious(_ context.Context, kind storage.StageKind) (*storage.Stage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var prev *storage.Stage
	for _, stage := range s.Stages {
		if stage.Kind < kind && (prev == nil || stage.Kind > prev.Kind) {
			prev = stage
		}
	}
	if prev == nil {
		return nil, storage.ErrNotFound
	}
	cp := *prev
	return &cp, nil
}

type MemTeamStorage struct {
	mu    sync.Mutex
	Teams map[string]*storage.Team
}

func NewMemTeamStorage() *MemTeamStorage {
	return &MemTeamStorage{Teams: make(map[string]*storage.Team)}
}

func copyTeam(t *storage.Team) *storage.Team {
	cp := *t
	cp.Bugs = append([]storage.BugLedgerEntry(nil), t.Bugs...)
	cp.JudgeScore = make([]storage.JudgeScore, 0, len(t.JudgeScore))
	for _, js := range t.JudgeScore {
		jsCp := storage.JudgeScore{JudgeID: js.JudgeID}
		for _, rs := range js.Scores {
			rsCp := storage.RoundScore{RoundID: rs.RoundID}
			rsCp.CategoryScores = append(rsCp.CategoryScores, rs.CategoryScores...)
			jsCp.Scores = append(jsCp.Scores, rsCp)
		}
		cp.JudgeScore = append(cp.JudgeScore, jsCp)
	}
	return &cp
}

func (s *MemTeamStorage) Get(_ context.Context, id string) (*storage.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.Teams[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyTeam(team), nil
}

func (s *MemTeamStorage) GetAll(_ context.Context) ([]*storage.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*storage.Team, 0, len(s.Teams))
	for _, team := range s.Teams {
		out = append(out, copyTeam(team))
	}
	return out, nil
}

func (s *MemTeamStorage) Create(_ context.Context, team *storage.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Teams[team.ID]; ok {
		return storage.ErrItemAlreadyExists
	}
	s.Teams[team.ID] = copyTeam(team)
	return nil
}

func (s *MemTeamStorage) Update(_ context.Context, team *storage.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Teams[team.ID] = copyTeam(team)
	return nil
}

func (s *MemTeamStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Teams, id)
	return nil
}

func (s *MemTeamStorage) PrependBugLedgerEntry(_ context.Context, teamID string, entry storage.BugLedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.Teams[teamID]
	if !ok {
		return storage.ErrNotFound
	}
	team.Bugs = append([]storage.BugLedgerEntry{entry}, team.Bugs...)
	return nil
}

func (s *MemTeamStorage) IncrementBugLedgerHead(_ context.Context, teamID string, scoreDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.Teams[teamID]
	if !ok || len(team.Bugs) == 0 {
		return storage.ErrNotFound
	}
	team.Bugs[0].Score += scoreDelta
	return nil
}

func (s *MemTeamStorage) TruncateBugLedger(_ context.Context, teamID string, fromIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.Teams[teamID]
	if !ok {
		return storage.ErrNotFound
	}
	if fromIndex == -1 {
		team.Bugs = []storage.BugLedgerEntry{}
		return nil
	}
	if fromIndex < 0 {
		return fmt.Errorf("invalid ledger restore index %d", fromIndex)
	}
	if fromIndex > len(team.Bugs) {
		fromIndex = len(team.Bugs)
	}
	team.Bugs = append([]storage.BugLedgerEntry(nil), team.Bugs[fromIndex:]...)
	return nil
}

func (s *MemTeamStorage) UpsertJudgeScore(_ context.Context, teamID, judgeID, roundID, categoryID string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.Teams[teamID]
	if !ok {
		return storage.ErrNotFound
	}

	for i := range team.JudgeScore {
		if team.JudgeScore[i].JudgeID != judgeID {
			continue
		}
		for j := range team.JudgeScore[i].Scores {
			if team.JudgeScore[i].Scores[j].RoundID != roundID {
				continue
			}
			for k := range team.JudgeScore[i].Scores[j].CategoryScores {
				if team.JudgeScore[i].Scores[j].CategoryScores[k].CategoryID == categoryID {
					team.JudgeScore[i].Scores[j].CategoryScores[k].Score = score
					return nil
				}
			}
			team.JudgeScore[i].Scores[j].CategoryScores = append(
				team.JudgeScore[i].Scores[j].CategoryScores,
				storage.CategoryScore{CategoryID: categoryID, Score: score})
			return nil
		}
		team.JudgeScore[i].Scores = append(team.JudgeScore[i].Scores, storage.RoundScore{
			RoundID:        roundID,
			CategoryScores: []storage.CategoryScore{{CategoryID: categoryID, Score: score}},
		})
		return nil
	}

	team.JudgeScore = append(team.JudgeScore, storage.JudgeScore{
		JudgeID: judgeID,
		Scores: []storage.RoundScore{
			{RoundID: roundID, CategoryScores: []storage.CategoryScore{{CategoryID: categoryID, Score: score}}},
		},
	})
	return nil
}

type MemProgressStorage struct {
	mu       sync.Mutex
	Progress map[string]*storage.Progress // keyed by team ID
}

func NewMemProgressStorage() *MemProgressStorage {
	return &MemProgressStorage{Progress: make(map[string]*storage.Progress)}
}

func (s *MemProgressStorage) GetByTeam(_ context.Context, teamID string) (*storage.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	progress, ok := s.Progress[teamID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *progress
	return &cp, nil
}

func (s *MemProgressStorage) Create(_ context.Context, progress *storage.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Progress[progress.TeamID]; ok {
		return storage.ErrItemAlreadyExists
	}
	cp := *progress
	s.Progress[progress.TeamID] = &cp
	return nil
}

func (s *MemProgressStorage) RebindStage(_ context.Context, teamID, stageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	progress, ok := s.Progress[teamID]
	if !ok {
		return storage.ErrNotFound
	}
	progress.StageID = stageID
	progress.StageBoundAt = time.Now().UTC()
	return nil
}

func (s *MemProgressStorage) DeleteByTeam(_ context.Context, teamID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Progress, teamID)
	return nil
}

type MemBugStorage struct {
	mu   sync.Mutex
	Bugs map[string]*storage.Bug
}

func NewMemBugStorage() *MemBugStorage {
	return &MemBugStorage{Bugs: make(map[string]*storage.Bug)}
}

func (s *MemBugStorage) Get(_ context.Context, id string) (*storage.Bug, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bug, ok := s.Bugs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *bug
	return &cp, nil
}

func (s *MemBugStorage) GetAll(_ context.Context) ([]*storage.Bug, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*storage.Bug, 0, len(s.Bugs))
	for _, bug := range s.Bugs {
		cp := *bug
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemBugStorage) Create(_ context.Context, bug *storage.Bug) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Bugs[bug.ID]; ok {
		return storage.ErrItemAlreadyExists
	}
	cp := *bug
	s.Bugs[bug.ID] = &cp
	return nil
}

func (s *MemBugStorage) Update(_ context.Context, bug *storage.Bug) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *bug
	s.Bugs[bug.ID] = &cp
	return nil
}

type MemBugTypeStorage struct {
	mu    sync.Mutex
	Types map[string]*storage.BugType
}

func NewMemBugTypeStorage() *MemBugTypeStorage {
	return &MemBugTypeStorage{Types: make(map[string]*storage.BugType)}
}

func (s *MemBugTypeStorage) Get(_ context.Context, name string) (*storage.BugType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bt, ok := s.Types[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *bt
	return &cp, nil
}

func (s *MemBugTypeStorage) GetAll(_ context.Context) ([]*storage.BugType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*storage.BugType, 0, len(s.Types))
	for _, bt := range s.Types {
		cp := *bt
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemBugTypeStorage) Create(_ context.Context, bugType *storage.BugType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Types[bugType.Name]; ok {
		return storage.ErrItemAlreadyExists
	}
	cp := *bugType
	s.Types[bugType.Name] = &cp
	return nil
}

func (s *MemBugTypeStorage) Update(_ context.Context, bugType *storage.BugType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *bugType
	s.Types[bugType.Name] = &cp
	return nil
}

type MemSubmissionStorage struct {
	mu          sync.Mutex
	Submissions map[string]*storage.Submission
}

func NewMemSubmissionStorage() *MemSubmissionStorage {
	return &MemSubmissionStorage{Submissions: make(map[string]*storage.Submission)}
}

func (s *MemSubmissionStorage) Get(_ context.Context, id string) (*storage.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	submission, ok := s.Submissions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *submission
	return &cp, nil
}

func (s *MemSubmissionStorage) GetByTeam(_ context.Context, teamID string) (*storage.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, submission := range s.Submissions {
		if submission.TeamID == teamID {
			cp := *submission
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *MemSubmissionStorage) GetAll(_ context.Context) ([]*storage.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*storage.Submission, 0, len(s.Submissions))
	for _, submission := range s.Submissions {
		cp := *submission
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemSubmissionStorage) Create(_ context.Context, submission *storage.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Submissions[submission.ID]; ok {
		return storage.ErrItemAlreadyExists
	}
	cp := *submission
	s.Submissions[submission.ID] = &cp
	return nil
}

func (s *MemSubmissionStorage) UpdateStatus(_ context.Context, id string, status storage.SubmissionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	submission, ok := s.Submissions[id]
	if !ok {
		return storage.ErrNotFound
	}
	submission.Status = status
	submission.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemSubmissionStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Submissions, id)
	return nil
}

type MemRuntimeConfigStorage struct {
	mu    sync.Mutex
	Flags map[string]bool
}

func NewMemRuntimeConfigStorage() *MemRuntimeConfigStorage {
	return &MemRuntimeConfigStorage{Flags: make(map[string]bool)}
}

func (s *MemRuntimeConfigStorage) GetFlag(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Flags[key], nil
}

func (s *MemRuntimeConfigStorage) SetFlag(_ context.Context, key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Flags[key] = value
	return nil
}
