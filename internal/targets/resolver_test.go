package targets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "serie a", Normalize("  Serie A "))
	assert.Equal(t, "super lig", Normalize("Süper Lig"))
	assert.Equal(t, "league 2", Normalize("League Two"))
	assert.Equal(t, "2 liga", Normalize("2nd Liga"))
	assert.Equal(t, "j league 2", Normalize("J. League 2"))
	assert.Equal(t, "", Normalize(""))
}

func TestParseComposite(t *testing.T) {
	id, name := ParseComposite("4_Serie A")
	assert.Equal(t, "4", id)
	assert.Equal(t, "Serie A", name)

	id, name = ParseComposite("Serie A")
	assert.Empty(t, id)
	assert.Equal(t, "Serie A", name)

	// Prefijo no numérico: no es formato compuesto.
	id, name = ParseComposite("prva_liga")
	assert.Empty(t, id)
	assert.Equal(t, "prva_liga", name)
}

func TestSplitCountryLeague(t *testing.T) {
	country, league := SplitCountryLeague("Italy-Serie A")
	assert.Equal(t, "italian", country)
	assert.Equal(t, "serie a", league)

	country, league = SplitCountryLeague("England-League Two")
	assert.Equal(t, "english", country)
	assert.Equal(t, "league 2", league)

	country, league = SplitCountryLeague("Eredivisie")
	assert.Empty(t, country)
	assert.Equal(t, "eredivisie", league)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("serie a", "serie a"))

	// Subconjunto (inserción de sponsor): denominador el conjunto menor.
	assert.Equal(t, 1.0, Similarity("english league 2", "english sky bet league 2"))

	// Jaccard estándar: {serie,a} comunes sobre unión de 4.
	assert.InDelta(t, 0.5, Similarity("italian serie a", "spanish serie a"), 1e-9)

	assert.Zero(t, Similarity("", "serie a"))
}

func competitionPool() []Candidate {
	return []Candidate{
		{ID: "4", Name: "Italian Serie A"},
		{ID: "18", Name: "Brazilian Serie A"},
		{ID: "33", Name: "English Sky Bet League 2"},
		{ID: "7", Name: "Dutch Eredivisie"},
	}
}

func TestResolve_ByID(t *testing.T) {
	m, ok := Resolve("4_whatever name the feed sends", competitionPool())
	require.True(t, ok)
	assert.Equal(t, "id", m.Strategy)
	assert.Equal(t, "Italian Serie A", m.Candidate.Name)
}

func TestResolve_CountryCrossValidation(t *testing.T) {
	// "Serie A" con país no debe cruzar al Serie A de otro país.
	m, ok := Resolve("Italy-Serie A", competitionPool())
	require.True(t, ok)
	assert.Equal(t, "Italian Serie A", m.Candidate.Name)

	m, ok = Resolve("Brazil-Serie A", competitionPool())
	require.True(t, ok)
	assert.Equal(t, "Brazilian Serie A", m.Candidate.Name)

	// País sin candidato compatible: sin match aunque la liga coincida.
	_, ok = Resolve("Spain-Serie A", competitionPool())
	assert.False(t, ok)
}

func TestResolve_SponsorInsertion(t *testing.T) {
	m, ok := Resolve("England-League Two", competitionPool())
	require.True(t, ok)
	assert.Equal(t, "English Sky Bet League 2", m.Candidate.Name)
}

func TestResolve_FullNameSimilarity(t *testing.T) {
	m, ok := Resolve("Eredivisie", competitionPool())
	require.True(t, ok)
	assert.Equal(t, "Dutch Eredivisie", m.Candidate.Name)
}

func TestResolve_NoMatch(t *testing.T) {
	_, ok := Resolve("Finland-Veikkausliiga", competitionPool())
	assert.False(t, ok)
}
