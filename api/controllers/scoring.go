package controllers

import (
	"context"
	"time"

	"github.com/TechTatva-25/m-hash-backend/storage"
)

// appendLedgerEvent records one scoring event against a team: it reads the
// current ledger head and prepends a new cumulative snapshot. The prepend
// itself is a single atomic document update; two racing events may compute
// from the same head, which the domain accepts (scores are reconciled by
// admins).
func appendLedgerEvent(ctx context.Context, teams storage.TeamStorage, teamID string, scoreDelta int) error {
	team, err := teams.Get(ctx, teamID)
	if err != nil {
		return err
	}

	head := team.LedgerHead()
	entry := storage.BugLedgerEntry{
		Score:     head.Score + scoreDelta,
		BugCount:  head.BugCount + 1,
		UpdatedAt: time.Now().UTC(),
	}
	return teams.PrependBugLedgerEntry(ctx, teamID, entry)
}

// applyBugStatusEffect applies the score effect of a bug in a given status:
// a valid bug pays the reporter and penalizes the team it was found in, an
// invalid one penalizes the reporter, a pending one scores nothing.
func applyBugStatusEffect(ctx context.Context, teams storage.TeamStorage, status storage.BugStatus, reporterID, foundInID string, points int) error {
	switch status {
	case storage.BugValid:
		if err := appendLedgerEvent(ctx, teams, reporterID, points); err != nil {
			return err
		}
		return appendLedgerEvent(ctx, teams, foundInID, -points)
	case storage.BugInvalid:
		return appendLedgerEvent(ctx, teams, reporterID, -points)
	}
	return nil
}

// undoBugStatusEffect reverses applyBugStatusEffect by appending the inverse
// events. An edit is an undo followed by a fresh apply, so each affected
// team gains new ledger entries rather than a corrected one.
func undoBugStatusEffect(ctx context.Context, teams storage.TeamStorage, status storage.BugStatus, reporterID, foundInID string, points int) error {
	switch status {
	case storage.BugValid:
		if err := appendLedgerEvent(ctx, teams, reporterID, -points); err != nil {
			return err
		}
		return appendLedgerEvent(ctx, teams, foundInID, points)
	case storage.BugInvalid:
		return appendLedgerEvent(ctx, teams, reporterID, points)
	}
	return nil
}
