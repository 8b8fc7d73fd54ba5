package storage

import "time"

// StageKind is an explicit ordinal so stage ordering never depends on
// string comparison. The competition walks the kinds in declaration order.
type StageKind int

const (
	StageRegistration StageKind = iota
	StageSubmission
	StageQualifiers
	StageFinals
	StageResults
)

var stageKindNames = map[StageKind]string{
	StageRegistration: "registration",
	StageSubmission:   "submission",
	StageQualifiers:   "qualifiers",
	StageFinals:       "finals",
	StageResults:      "results",
}

func (k StageKind) String() string {
	if name, ok := stageKindNames[k]; ok {
		return name
	}
	return "unknown"
}

func (k StageKind) Valid() bool {
	_, ok := stageKindNames[k]
	return ok
}

// ParseStageKind maps a stage name back to its ordinal.
func ParseStageKind(name string) (StageKind, bool) {
	for k, n := range stageKindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

type Stage struct {
	ID          string    `dynamodbav:"PK"`
	Kind        StageKind `dynamodbav:"Kind"`
	Name        string    `dynamodbav:"Name"`
	Description string    `dynamodbav:"Description"`
	Active      bool      `dynamodbav:"Active"`
	StartDate   time.Time `dynamodbav:"StartDate"`
	EndDate     time.Time `dynamodbav:"EndDate"`
	CreatedAt   time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt   time.Time `dynamodbav:"UpdatedAt"`
}

// Progress binds a team to the stage it is currently waiting in. The
// Completed/Disqualified fields are persisted but never trusted on read;
// the authoritative values are derived from stage timing on every request.
type Progress struct {
	ID           string    `dynamodbav:"PK"`
	TeamID       string    `dynamodbav:"TeamID"`
	StageID      string    `dynamodbav:"StageID"`
	Completed    bool      `dynamodbav:"Completed"`
	Disqualified bool      `dynamodbav:"Disqualified"`
	CreatedAt    time.Time `dynamodbav:"CreatedAt"`
	StageBoundAt time.Time `dynamodbav:"StageBoundAt"`
}

// BugLedgerEntry is one cumulative snapshot of a team's bug-bounty score.
// The ledger is newest-first: index 0 is the current state.
type BugLedgerEntry struct {
	Score     int       `dynamodbav:"Score"`
	BugCount  int       `dynamodbav:"BugCount"`
	UpdatedAt time.Time `dynamodbav:"UpdatedAt"`
}

type CategoryScore struct {
	CategoryID string `dynamodbav:"CategoryID"`
	Score      int    `dynamodbav:"Score"`
}

type RoundScore struct {
	RoundID        string          `dynamodbav:"RoundID"`
	CategoryScores []CategoryScore `dynamodbav:"CategoryScores"`
}

type JudgeScore struct {
	JudgeID string       `dynamodbav:"JudgeID"`
	Scores  []RoundScore `dynamodbav:"Scores"`
}

type Team struct {
	ID         string           `dynamodbav:"PK"`
	Code       string           `dynamodbav:"Code"`
	Name       string           `dynamodbav:"Name"`
	Members    []string         `dynamodbav:"Members"`
	LeaderID   string           `dynamodbav:"LeaderID"`
	College    string           `dynamodbav:"College"`
	Bugs       []BugLedgerEntry `dynamodbav:"Bugs"`
	JudgeScore []JudgeScore     `dynamodbav:"JudgeScore"`
	Deployed   bool             `dynamodbav:"Deployed"`
	CreatedAt  time.Time        `dynamodbav:"CreatedAt"`
	UpdatedAt  time.Time        `dynamodbav:"UpdatedAt"`
}

// LedgerHead returns the current cumulative snapshot, or a zero entry when
// the ledger is empty.
func (t *Team) LedgerHead() BugLedgerEntry {
	if len(t.Bugs) == 0 {
		return BugLedgerEntry{}
	}
	return t.Bugs[0]
}

type BugStatus string

const (
	BugPending BugStatus = "pending"
	BugValid   BugStatus = "valid"
	BugInvalid BugStatus = "invalid"
)

func (s BugStatus) Valid() bool {
	switch s {
	case BugPending, BugValid, BugInvalid:
		return true
	}
	return false
}

type Bug struct {
	ID               string    `dynamodbav:"PK"`
	Category         string    `dynamodbav:"Category"`
	ReportedByTeamID string    `dynamodbav:"ReportedByTeamID"`
	FoundInTeamID    string    `dynamodbav:"FoundInTeamID"`
	Status           BugStatus `dynamodbav:"Status"`
	PointsAwarded    int       `dynamodbav:"PointsAwarded"`
	AdminNotes       string    `dynamodbav:"AdminNotes"`
	CreatedAt        time.Time `dynamodbav:"CreatedAt"`
	UpdatedAt        time.Time `dynamodbav:"UpdatedAt"`
}

type BugType struct {
	Name          string `dynamodbav:"PK"`
	DefaultPoints int    `dynamodbav:"DefaultPoints"`
}

type SubmissionStatus string

const (
	SubmissionPending       SubmissionStatus = "pending"
	SubmissionAdminApproved SubmissionStatus = "admin-ap"
	SubmissionAdminRejected SubmissionStatus = "admin-rj"
	SubmissionJudgeApproved SubmissionStatus = "judge-ap"
	SubmissionJudgeRejected SubmissionStatus = "judge-rj"
)

// Display statuses are computed at read time from the release_results flag
// and never stored.
const (
	DisplayUnderEval = "Under Evaluation"
	DisplayRejected  = "Not qualified"
	DisplayQualified = "QUALIFIED"
)

type Submission struct {
	ID                 string           `dynamodbav:"PK"`
	TeamID             string           `dynamodbav:"TeamID"`
	ProblemID          string           `dynamodbav:"ProblemID"`
	SubmissionURL      string           `dynamodbav:"SubmissionURL"`
	SubmissionVideoURL string           `dynamodbav:"SubmissionVideoURL"`
	Status             SubmissionStatus `dynamodbav:"Status"`
	CreatedAt          time.Time        `dynamodbav:"CreatedAt"`
	UpdatedAt          time.Time        `dynamodbav:"UpdatedAt"`
}
