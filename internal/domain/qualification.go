package domain

import "fmt"

// Verdict is the outcome of one qualification evaluation.
type Verdict int

const (
	// VerdictRejected: not qualified on this snapshot, keep monitoring.
	VerdictRejected Verdict = iota
	// VerdictQualified: the match qualifies for betting.
	VerdictQualified
	// VerdictImpossible: no target is reachable anymore (strict early cut).
	// Trackers convert this into a delayed discard candidate, not an
	// immediate disqualification, to absorb VAR reversals.
	VerdictImpossible
	// VerdictOutOfTarget: total goals already bust the Over threshold.
	// Disqualifies immediately, no delay.
	VerdictOutOfTarget
)

// MinuteWindow is the goal-detection window, inclusive on both ends.
type MinuteWindow struct {
	Start int
	End   int
}

// Contains reports whether minute falls inside the window.
func (w MinuteWindow) Contains(minute int) bool {
	return minute >= w.Start && minute <= w.End
}

// DefaultWindow is the configured default goal-detection window.
func DefaultWindow() MinuteWindow {
	return MinuteWindow{Start: 60, End: 74}
}

// QualificationInput is one snapshot of everything the decision needs.
// Targets carries the resolved target set for the competition; an empty set
// means "no information" and disables the target-based rules.
type QualificationInput struct {
	Score       Scoreline
	Goals       []GoalEvent
	Minute      int
	Window      MinuteWindow
	Competition string
	Targets     ScoreSet

	// ZeroZeroExceptions is the legacy hardcoded competition list that
	// qualifies 0-0 even when the sheet has no 0-0 target.
	ZeroZeroExceptions map[string]struct{}

	VARCheckEnabled     bool
	TargetOver          float64 // 0 means not configured
	EarlyDiscardEnabled bool
	StrictDiscardAt60   bool
}

// Decide evaluates one snapshot against the qualification rules, first
// matching rule wins:
//
//  1. strict early-impossibility (minute 0-60, strict mode): score is not a
//     target and no score one goal away is a target
//  2. early out-of-target (minute 0-60, Over threshold configured, no sheet
//     targets): total goals at or past the threshold
//  3. 0-0 exception inside the window
//  4. score already in targets inside the window
//  5. goal inside the window, VAR-cancelled goals excluded
//  6. otherwise rejected
//
// Cancelled goals are filtered only before rule 5: rules 3-4 operate on the
// feed-reported score, which already reflects cancellations.
func Decide(in QualificationInput) (Verdict, string) {
	// Rule 1: strict early-impossibility.
	if in.EarlyDiscardEnabled && in.StrictDiscardAt60 && in.Minute >= 0 && in.Minute <= 60 && len(in.Targets) > 0 {
		if !in.Targets.Contains(in.Score) && !Reachable(in.Score, in.Targets, 1) {
			return VerdictImpossible, fmt.Sprintf(
				"score %s at minute %d: no target reachable within 1 goal (targets: %v)",
				in.Score, in.Minute, in.Targets.Strings())
		}
	}

	// Rule 2: early out-of-target against the Over threshold. Only a
	// fallback net when sheet targets are unavailable.
	if in.EarlyDiscardEnabled && in.TargetOver > 0 && len(in.Targets) == 0 && in.Minute >= 0 && in.Minute <= 60 {
		total := in.Score.Total()
		threshold := int(in.TargetOver)
		if total > threshold {
			return VerdictOutOfTarget, fmt.Sprintf(
				"score %s (%d goals) already exceeds Over %.1f at minute %d",
				in.Score, total, in.TargetOver, in.Minute)
		}
		if total == threshold {
			return VerdictOutOfTarget, fmt.Sprintf(
				"score %s (%d goals) at Over %.1f threshold - one more goal would exceed it",
				in.Score, total, in.TargetOver)
		}
	}

	inWindow := in.Window.Contains(in.Minute)

	// Rule 3: 0-0 exception. 0-0 may never produce a goal-in-window event
	// yet still be a valid target outcome.
	if inWindow && in.Score == (Scoreline{}) {
		if in.Targets.Contains(Scoreline{}) {
			return VerdictQualified, fmt.Sprintf("0-0 exception at minute %d (0-0 is a sheet target)", in.Minute)
		}
		if _, ok := in.ZeroZeroExceptions[in.Competition]; ok {
			return VerdictQualified, fmt.Sprintf("0-0 exception at minute %d (competition allowed)", in.Minute)
		}
	}

	// Rule 4: score already on target inside the window, no goal needed.
	if inWindow && in.Targets.Contains(in.Score) {
		return VerdictQualified, fmt.Sprintf("score %s already in targets at minute %d", in.Score, in.Minute)
	}

	// Rule 5: goal inside the window.
	goals := in.Goals
	if in.VARCheckEnabled {
		goals = FilterCancelled(goals)
	}
	if g, ok := GoalInWindow(goals, in.Window.Start, in.Window.End); ok {
		return VerdictQualified, fmt.Sprintf(
			"goal in %d-%d window (minute %d, team %s)",
			in.Window.Start, in.Window.End, g.Minute, g.Team)
	}

	return VerdictRejected, "no qualification (no goal in window, no 0-0 exception)"
}
