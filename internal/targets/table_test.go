package targets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/laybot/internal/domain"
)

type fakeSheet struct {
	rows []Row
	err  error
}

func (f *fakeSheet) ReadTargetRows(path string) ([]Row, error) {
	return f.rows, f.err
}

func TestTable_AccumulatesTargetsPerCompetition(t *testing.T) {
	tbl := NewTable(&fakeSheet{rows: []Row{
		{CompetitionLive: "4_Serie A", Result: "1-1", MinOdds: 1.3, StakePercent: 2},
		{CompetitionLive: "4_Serie A", Result: "0-0", MinOdds: 1.5, StakePercent: 1},
		{CompetitionLive: "7_Eredivisie", Result: "2-1", MinOdds: 1.4, StakePercent: 3},
	}}, "targets.xlsx")

	set := tbl.Targets("Serie A", "4")
	require.Len(t, set, 2)
	assert.True(t, set.Contains(domain.Scoreline{Home: 1, Away: 1}))
	assert.True(t, set.Contains(domain.Scoreline{Home: 0, Away: 0}))
}

func TestTable_BettingEntryPerScoreline(t *testing.T) {
	tbl := NewTable(&fakeSheet{rows: []Row{
		{CompetitionLive: "4_Serie A", Result: "1-1", MinOdds: 1.3, StakePercent: 2},
		{CompetitionLive: "4_Serie A", Result: "0-0", MinOdds: 1.5, StakePercent: 1},
	}}, "targets.xlsx")

	// Min-odds y stake son por fila, no por competición.
	e, ok := tbl.BettingEntry("Serie A", "4", domain.Scoreline{Home: 0, Away: 0})
	require.True(t, ok)
	assert.InDelta(t, 1.5, e.MinOdds, 1e-9)
	assert.InDelta(t, 1.0, e.StakePercent, 1e-9)

	e, ok = tbl.BettingEntry("Serie A", "4", domain.Scoreline{Home: 1, Away: 1})
	require.True(t, ok)
	assert.InDelta(t, 1.3, e.MinOdds, 1e-9)

	_, ok = tbl.BettingEntry("Serie A", "4", domain.Scoreline{Home: 2, Away: 2})
	assert.False(t, ok)
}

func TestTable_DefensiveResultParsing(t *testing.T) {
	tbl := NewTable(&fakeSheet{rows: []Row{
		{CompetitionLive: "4_Serie A", Result: "1-1"},
		{CompetitionLive: "4_Serie A", Result: "2001-01-01"}, // fecha autoconvertida
		{CompetitionLive: "4_Serie A", Result: "36892"},      // serial numérico
		{CompetitionLive: "4_Serie A", Result: "1:2"},        // separador alternativo
		{CompetitionLive: "4_Serie A", Result: ""},
	}}, "targets.xlsx")

	set := tbl.Targets("Serie A", "4")
	require.Len(t, set, 2)
	assert.True(t, set.Contains(domain.Scoreline{Home: 1, Away: 1}))
	assert.True(t, set.Contains(domain.Scoreline{Home: 1, Away: 2}))
}

func TestTable_LegacyCompetitionColumn(t *testing.T) {
	tbl := NewTable(&fakeSheet{rows: []Row{
		{Competition: "Italy-Serie A", Result: "1-1", MinOdds: 1.3, StakePercent: 2},
	}}, "targets.xlsx")

	// Resolución por nombre vía el resolver; el exchange trae gentilicio.
	set := tbl.Targets("Italian Serie A", "")
	require.Len(t, set, 1)
	assert.True(t, set.Contains(domain.Scoreline{Home: 1, Away: 1}))
}

func TestTable_UnresolvedReturnsEmptySet(t *testing.T) {
	tbl := NewTable(&fakeSheet{rows: []Row{
		{CompetitionLive: "4_Serie A", Result: "1-1"},
	}}, "targets.xlsx")

	set := tbl.Targets("Finland-Veikkausliiga", "999")
	assert.Empty(t, set)
}

func TestTable_ReaderErrorReturnsEmptySet(t *testing.T) {
	tbl := NewTable(&fakeSheet{err: errors.New("boom")}, "targets.xlsx")
	assert.Empty(t, tbl.Targets("Serie A", "4"))
}

func TestTable_Reload(t *testing.T) {
	sheet := &fakeSheet{rows: []Row{
		{CompetitionLive: "4_Serie A", Result: "1-1"},
	}}
	tbl := NewTable(sheet, "targets.xlsx")
	require.Len(t, tbl.Targets("Serie A", "4"), 1)

	sheet.rows = append(sheet.rows, Row{CompetitionLive: "4_Serie A", Result: "2-2"})
	// Sin Reload la proyección cacheada no cambia.
	assert.Len(t, tbl.Targets("Serie A", "4"), 1)

	tbl.Reload()
	assert.Len(t, tbl.Targets("Serie A", "4"), 2)
}
