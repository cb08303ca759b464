package domain

import (
	"fmt"
	"log/slog"
	"time"
)

// MatchState is the lifecycle state of a tracked match.
type MatchState int

const (
	StateWaiting60 MatchState = iota
	StateMonitoring60_74
	StateQualified
	StateDisqualified
	StateReadyForBet
	StateFinished
)

// String devuelve el nombre del estado para logs y snapshots.
func (s MatchState) String() string {
	switch s {
	case StateWaiting60:
		return "WAITING_60"
	case StateMonitoring60_74:
		return "MONITORING_60_74"
	case StateQualified:
		return "QUALIFIED"
	case StateDisqualified:
		return "DISQUALIFIED"
	case StateReadyForBet:
		return "READY_FOR_BET"
	case StateFinished:
		return "FINISHED"
	default:
		return fmt.Sprintf("MatchState(%d)", int(s))
	}
}

// Terminal reports whether no further transitions can happen.
func (s MatchState) Terminal() bool {
	return s == StateDisqualified || s == StateFinished
}

// TargetSource resolves the target scoreline set for a competition. An empty
// set means "no information" and every target-based check degrades to
// "cannot determine".
type TargetSource interface {
	Targets(competition, competitionID string) ScoreSet
}

// DefaultDiscardDelay is the grace period before a strict-impossible match
// is actually disqualified, to absorb VAR goal reversals.
const DefaultDiscardDelay = 4 * time.Minute

// TrackerConfig carries the per-tracker qualification knobs.
type TrackerConfig struct {
	Window              MinuteWindow
	VARCheckEnabled     bool
	TargetOver          float64
	EarlyDiscardEnabled bool
	StrictDiscardAt60   bool
	DiscardDelay        time.Duration
	ZeroZeroExceptions  map[string]struct{}
}

// Tracker owns the lifecycle of one externally-tracked match. It is not
// safe for concurrent use; the polling loop is its only caller.
type Tracker struct {
	EventID       string // exchange event id, identity key
	EventName     string // e.g. "Team A v Team B"
	FeedMatchID   string
	Competition   string
	CompetitionID string

	cfg TrackerConfig

	score         Scoreline
	minute        int
	goals         []GoalEvent
	lastGoalCount int

	state      MatchState
	qualified  bool
	qualReason string

	discardReason string

	scoreAt60    Scoreline
	scoreAt60Set bool

	// Discard candidacy: set when strict mode reports "impossible", cleared
	// if the score recovers within cfg.DiscardDelay.
	candidateSince  time.Time
	candidateReason string
	candidateScore  Scoreline

	betPlaced  bool
	betSkipped bool
	betID      string

	createdAt   time.Time
	lastUpdate  time.Time
	qualifiedAt time.Time

	now func() time.Time
}

// NewTracker creates a tracker in WAITING_60 for a freshly matched event.
func NewTracker(eventID, eventName, feedMatchID, competition, competitionID string, cfg TrackerConfig) *Tracker {
	if cfg.Window == (MinuteWindow{}) {
		cfg.Window = DefaultWindow()
	}
	if cfg.DiscardDelay <= 0 {
		cfg.DiscardDelay = DefaultDiscardDelay
	}

	t := &Tracker{
		EventID:       eventID,
		EventName:     eventName,
		FeedMatchID:   feedMatchID,
		Competition:   competition,
		CompetitionID: competitionID,
		cfg:           cfg,
		minute:        -1,
		state:         StateWaiting60,
		now:           time.Now,
	}
	t.createdAt = t.now()
	t.lastUpdate = t.createdAt

	slog.Info("tracker created",
		"event", eventName,
		"event_id", eventID,
		"feed_id", feedMatchID,
		"competition", competition,
	)
	return t
}

// UpdateMatchData ingests the latest feed snapshot for this match.
func (t *Tracker) UpdateMatchData(score Scoreline, minute int, goals []GoalEvent) {
	t.score = score
	t.minute = minute
	t.goals = goals
	t.lastUpdate = t.now()

	valid := len(FilterCancelled(goals))
	if valid > t.lastGoalCount {
		slog.Info("new goal detected",
			"event", t.EventName,
			"new", valid-t.lastGoalCount,
			"total", valid,
			"score", score,
		)
	}
	t.lastGoalCount = valid
}

// UpdateState runs one state-machine step against the current snapshot.
// It never panics: degraded upstream data produces a disqualification with
// a diagnostic reason, or no transition at all.
func (t *Tracker) UpdateState(targets TargetSource) {
	if t.state.Terminal() {
		return
	}

	// Finish detection. A minute outside [0,90] normally signals a finished
	// or invalid feed read, but a qualified match must not be torn down by
	// one flaky negative-minute sample: QUALIFIED and READY_FOR_BET finish
	// only when the minute is genuinely past 90.
	if t.minute < 0 || t.minute > 90 {
		switch t.state {
		case StateQualified:
			if t.minute > 90 && (t.betPlaced || t.minute > 75) {
				t.finish()
			}
			return
		case StateReadyForBet:
			if t.minute > 90 {
				t.finish()
			}
			return
		default:
			t.finish()
			return
		}
	}

	// Late-discard guard: past the window end a tracker that never
	// qualified cannot qualify anymore. Inside MONITORING_60_74 the
	// qualification check still runs first in this same update, so a goal
	// landing exactly at the boundary is not lost to evaluation order.
	if t.minute > t.cfg.Window.End && !t.qualified && t.state != StateMonitoring60_74 {
		t.disqualify(fmt.Sprintf("minute %d > %d (not qualified)", t.minute, t.cfg.Window.End))
		return
	}

	// Window entry runs before the reachability verdict so a match first
	// seen at minute 60 gets the monitoring treatment (candidate delay
	// included) on this same update.
	if t.state == StateWaiting60 && t.minute >= t.cfg.Window.Start {
		t.state = StateMonitoring60_74
		t.scoreAt60 = t.score
		t.scoreAt60Set = true
		slog.Info("monitoring window entered", "event", t.EventName, "minute", t.minute, "score", t.score)
	}

	// Continuous reachability discard. While monitoring under strict mode
	// the flag is routed through the discard-candidate delay instead of
	// discarding outright, so a VAR reversal can still save the match.
	unreachable, unreachableReason := t.reachabilityVerdict(targets)
	if unreachable && !(t.state == StateMonitoring60_74 && t.cfg.StrictDiscardAt60) {
		t.disqualify(unreachableReason)
		return
	}

	switch t.state {
	case StateMonitoring60_74:
		t.stepMonitoring(targets, unreachable, unreachableReason)

	case StateQualified:
		t.stepQualified(targets)

	case StateReadyForBet:
		t.stepReadyForBet(targets)
	}
}

// reachabilityVerdict applies the continuous reachability tests: a tracked
// score that either sits on a target no single goal can keep alive, or sits
// off target with no target reachable within the computed lookahead, cannot
// produce a bet anymore. Runs on every update for any minute >= 0, until
// the tracker earns qualification.
func (t *Tracker) reachabilityVerdict(targets TargetSource) (bool, string) {
	if targets == nil {
		return false, ""
	}
	switch t.state {
	case StateQualified, StateReadyForBet, StateDisqualified, StateFinished:
		// Qualification, once earned, is not revoked by reachability
		// arithmetic (only by the minute-75 re-check).
		return false, ""
	}

	// 0-0 is the universal starting state: never discard it before the
	// window opens.
	if t.score == (Scoreline{}) && t.minute < t.cfg.Window.Start {
		return false, ""
	}

	set := targets.Targets(t.Competition, t.CompetitionID)
	if len(set) == 0 {
		return false, "" // cannot determine, treat conservatively
	}

	if set.Contains(t.score) {
		// On target, but if any single goal would exit all targets the
		// match cannot survive to the decision window.
		if !Reachable(t.score, set, 1) {
			return true, fmt.Sprintf(
				"score %s is a target but any goal exits all targets %v", t.score, set.Strings())
		}
		return false, ""
	}

	lookahead := MaxGoalsNeeded(t.score, set)
	if !Reachable(t.score, set, lookahead) {
		return true, fmt.Sprintf(
			"score %s cannot reach any target %v within %d goals", t.score, set.Strings(), lookahead)
	}
	return false, ""
}

func (t *Tracker) stepMonitoring(targets TargetSource, unreachable bool, unreachableReason string) {
	// Qualification moves the tracker to QUALIFIED and this step never runs
	// again, so the match is always unqualified here.
	verdict, reason := Decide(t.decisionInput(targets))

	switch verdict {
	case VerdictOutOfTarget:
		t.disqualify(reason)
		return

	case VerdictQualified:
		t.clearDiscardCandidate()
		t.qualified = true
		t.qualReason = reason
		t.qualifiedAt = t.now()
		t.state = StateQualified
		slog.Info("match qualified", "event", t.EventName, "minute", t.minute, "score", t.score, "reason", reason)
		return
	}

	impossible := verdict == VerdictImpossible
	if !impossible && unreachable {
		impossible, reason = true, unreachableReason
	}

	if impossible {
		t.markDiscardCandidate(reason)
		if t.candidateExpired() {
			t.disqualify(fmt.Sprintf("discard candidate expired: %s", t.candidateReason))
			return
		}
	} else {
		// The score recovered (e.g. a VAR reversal): any pending
		// candidacy is dropped.
		t.clearDiscardCandidate()
	}

	if t.minute > t.cfg.Window.End {
		set := ScoreSet{}
		if targets != nil {
			set = targets.Targets(t.Competition, t.CompetitionID)
		}
		if set.Contains(Scoreline{}) {
			t.disqualify(fmt.Sprintf(
				"no goal in %d-%d and 0-0 exception existed but match not at 0-0", t.cfg.Window.Start, t.cfg.Window.End))
		} else {
			t.disqualify(fmt.Sprintf(
				"no goal in %d-%d, no 0-0 exception", t.cfg.Window.Start, t.cfg.Window.End))
		}
	}
}

// markDiscardCandidate records or refreshes the candidacy. A refreshed
// candidate keeps its original timestamp: the grace period is measured from
// the first impossible report, not the latest.
func (t *Tracker) markDiscardCandidate(reason string) {
	if t.candidateSince.IsZero() {
		t.candidateSince = t.now()
		slog.Info("discard candidate", "event", t.EventName, "score", t.score, "reason", reason,
			"delay", t.cfg.DiscardDelay)
	}
	t.candidateReason = reason
	t.candidateScore = t.score
}

func (t *Tracker) candidateExpired() bool {
	return !t.candidateSince.IsZero() && t.now().Sub(t.candidateSince) >= t.cfg.DiscardDelay
}

func (t *Tracker) clearDiscardCandidate() {
	if !t.candidateSince.IsZero() {
		slog.Info("discard candidate cleared", "event", t.EventName, "score", t.score)
	}
	t.candidateSince = time.Time{}
	t.candidateReason = ""
	t.candidateScore = Scoreline{}
}

// stepQualified re-validates the score against the target table during the
// 75th minute: the entry window is exactly [75,76).
func (t *Tracker) stepQualified(targets TargetSource) {
	if t.minute < 75 {
		return
	}
	if t.minute >= 76 {
		if !t.betPlaced {
			t.disqualify(fmt.Sprintf("expired-minute-75: minute %d with no bet placed", t.minute))
		}
		return
	}

	if targets != nil {
		set := targets.Targets(t.Competition, t.CompetitionID)
		if len(set) > 0 && !set.Contains(t.score) {
			t.disqualify(fmt.Sprintf("score-not-target-at-75: %s not in %v", t.score, set.Strings()))
			return
		}
	}

	t.state = StateReadyForBet
	slog.Info("ready for bet", "event", t.EventName, "minute", t.minute, "score", t.score)
}

func (t *Tracker) stepReadyForBet(targets TargetSource) {
	if t.minute >= 76 && !t.betPlaced {
		t.disqualify(fmt.Sprintf("expired-minute-75: minute %d with no bet placed", t.minute))
		return
	}

	// A goal during minute 75 can still move the score off target and
	// revoke readiness.
	if t.minute == 75 && targets != nil {
		set := targets.Targets(t.Competition, t.CompetitionID)
		if len(set) > 0 && !set.Contains(t.score) {
			t.disqualify(fmt.Sprintf("score-not-target-during-75: %s not in %v", t.score, set.Strings()))
		}
	}
}

func (t *Tracker) decisionInput(targets TargetSource) QualificationInput {
	set := ScoreSet{}
	if targets != nil {
		set = targets.Targets(t.Competition, t.CompetitionID)
	}
	return QualificationInput{
		Score:               t.score,
		Goals:               t.goals,
		Minute:              t.minute,
		Window:              t.cfg.Window,
		Competition:         t.Competition,
		Targets:             set,
		ZeroZeroExceptions:  t.cfg.ZeroZeroExceptions,
		VARCheckEnabled:     t.cfg.VARCheckEnabled,
		TargetOver:          t.cfg.TargetOver,
		EarlyDiscardEnabled: t.cfg.EarlyDiscardEnabled,
		StrictDiscardAt60:   t.cfg.StrictDiscardAt60,
	}
}

func (t *Tracker) disqualify(reason string) {
	t.state = StateDisqualified
	t.discardReason = reason
	slog.Info("match disqualified", "event", t.EventName, "minute", t.minute, "score", t.score, "reason", reason)
}

func (t *Tracker) finish() {
	t.state = StateFinished
	slog.Info("match finished", "event", t.EventName, "minute", t.minute, "score", t.score)
}

// Finish termina el seguimiento cuando el feed declara el partido acabado,
// sin depender de las heurísticas de minuto. No toca estados terminales.
func (t *Tracker) Finish() {
	if t.state.Terminal() {
		return
	}
	t.finish()
}

// State devuelve el estado actual.
func (t *Tracker) State() MatchState { return t.state }

// Score devuelve el último marcador conocido.
func (t *Tracker) Score() Scoreline { return t.score }

// Minute devuelve el último minuto conocido.
func (t *Tracker) Minute() int { return t.minute }

// Qualified reports whether the match earned qualification.
func (t *Tracker) Qualified() bool { return t.qualified }

// QualificationReason returns the reason recorded at qualification time.
func (t *Tracker) QualificationReason() string { return t.qualReason }

// DiscardReason returns the reason recorded at disqualification time.
func (t *Tracker) DiscardReason() string { return t.discardReason }

// ScoreAtWindowStart returns the score captured when the tracker entered
// the monitoring window, for diagnostics.
func (t *Tracker) ScoreAtWindowStart() (Scoreline, bool) {
	return t.scoreAt60, t.scoreAt60Set
}

// IsReadyForBet reports whether a bet may be attempted now.
func (t *Tracker) IsReadyForBet() bool {
	return t.state == StateReadyForBet && t.qualified
}

// BetAllowed reports whether no bet attempt happened yet for this match.
func (t *Tracker) BetAllowed() bool {
	return !t.betPlaced && !t.betSkipped
}

// RecordBet marks the tracker as bet-placed. After this no further bet
// attempts occur for this match.
func (t *Tracker) RecordBet(betID string) {
	t.betPlaced = true
	t.betID = betID
}

// RecordSkip marks the tracker as bet-skipped: the single attempt failed
// validation and will not be retried.
func (t *Tracker) RecordSkip() {
	t.betSkipped = true
}

// BetPlaced reports whether a bet was placed, with its exchange id.
func (t *Tracker) BetPlaced() (string, bool) { return t.betID, t.betPlaced }

// BetSkipped reports whether the single bet attempt was skipped.
func (t *Tracker) BetSkipped() bool { return t.betSkipped }

// TargetOver returns the configured Over threshold for this tracker.
func (t *Tracker) TargetOver() float64 { return t.cfg.TargetOver }

// LastUpdate returns when the tracker last received feed data.
func (t *Tracker) LastUpdate() time.Time { return t.lastUpdate }

// Status is a display/logging snapshot of a tracker.
type Status struct {
	EventID       string    `json:"event_id"`
	EventName     string    `json:"event_name"`
	FeedMatchID   string    `json:"feed_match_id"`
	Competition   string    `json:"competition"`
	Score         string    `json:"score"`
	Minute        int       `json:"minute"`
	State         string    `json:"state"`
	Qualified     bool      `json:"qualified"`
	QualReason    string    `json:"qualification_reason,omitempty"`
	DiscardReason string    `json:"discard_reason,omitempty"`
	GoalCount     int       `json:"goal_count"`
	BetPlaced     bool      `json:"bet_placed"`
	BetSkipped    bool      `json:"bet_skipped"`
	BetID         string    `json:"bet_id,omitempty"`
	LastUpdate    time.Time `json:"last_update"`
	QualifiedAt   time.Time `json:"qualified_at,omitzero"`
}

// GetStatus builds the current snapshot.
func (t *Tracker) GetStatus() Status {
	return Status{
		EventID:       t.EventID,
		EventName:     t.EventName,
		FeedMatchID:   t.FeedMatchID,
		Competition:   t.Competition,
		Score:         t.score.String(),
		Minute:        t.minute,
		State:         t.state.String(),
		Qualified:     t.qualified,
		QualReason:    t.qualReason,
		DiscardReason: t.discardReason,
		GoalCount:     len(FilterCancelled(t.goals)),
		BetPlaced:     t.betPlaced,
		BetSkipped:    t.betSkipped,
		BetID:         t.betID,
		LastUpdate:    t.lastUpdate,
		QualifiedAt:   t.qualifiedAt,
	}
}
