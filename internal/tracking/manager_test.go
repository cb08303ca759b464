package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/laybot/internal/domain"
)

type stubTargets map[string]domain.ScoreSet

func (s stubTargets) Targets(competition, _ string) domain.ScoreSet { return s[competition] }

func trackerCfg() domain.TrackerConfig {
	return domain.TrackerConfig{
		Window:              domain.DefaultWindow(),
		VARCheckEnabled:     true,
		EarlyDiscardEnabled: true,
		StrictDiscardAt60:   true,
		DiscardDelay:        4 * time.Minute,
	}
}

func newTracker(eventID string) *domain.Tracker {
	return domain.NewTracker(eventID, "Home "+eventID+" v Away "+eventID, "feed-"+eventID, "Serie A", "4", trackerCfg())
}

func TestManager_AddGetRemove(t *testing.T) {
	m := NewManager()
	tr := newTracker("e1")
	m.Add(tr)

	assert.Equal(t, 1, m.Len())
	assert.Same(t, tr, m.Get("e1"))
	assert.Nil(t, m.Get("missing"))

	m.Remove("e1")
	assert.Zero(t, m.Len())
}

func TestManager_ReadyForBet(t *testing.T) {
	m := NewManager()
	targets := stubTargets{"Serie A": domain.NewScoreSet("1-1")}

	ready := newTracker("e1")
	ready.UpdateMatchData(domain.Scoreline{Home: 1, Away: 1}, 70, []domain.GoalEvent{{Minute: 63, Team: domain.TeamAway}})
	ready.UpdateState(targets)
	ready.UpdateMatchData(domain.Scoreline{Home: 1, Away: 1}, 75, nil)
	ready.UpdateState(targets)
	require.Equal(t, domain.StateReadyForBet, ready.State())

	waiting := newTracker("e2")
	m.Add(ready)
	m.Add(waiting)

	got := m.ReadyForBet()
	require.Len(t, got, 1)
	assert.Same(t, ready, got[0])

	// Con la apuesta ya colocada deja de ser candidato.
	ready.RecordBet("b-1")
	assert.Empty(t, m.ReadyForBet())
}

func TestManager_Cleanup(t *testing.T) {
	m := NewManager()

	finished := newTracker("e1")
	finished.UpdateMatchData(domain.Scoreline{Home: 0, Away: 0}, 95, nil)
	finished.UpdateState(nil)
	require.Equal(t, domain.StateFinished, finished.State())

	discarded := newTracker("e2")
	discarded.UpdateMatchData(domain.Scoreline{Home: 0, Away: 0}, 80, nil)
	discarded.UpdateState(nil)
	require.Equal(t, domain.StateDisqualified, discarded.State())

	active := newTracker("e3")

	m.Add(finished)
	m.Add(discarded)
	m.Add(active)

	assert.Equal(t, 1, m.CleanupFinished())
	assert.Equal(t, 1, m.CleanupDisqualified())
	assert.Equal(t, 1, m.Len())
	assert.Same(t, active, m.Get("e3"))
}

func TestManager_Statuses(t *testing.T) {
	m := NewManager()
	m.Add(newTracker("e1"))
	m.Add(newTracker("e2"))

	statuses := m.Statuses()
	assert.Len(t, statuses, 2)
	for _, st := range statuses {
		assert.Equal(t, "WAITING_60", st.State)
	}
}
