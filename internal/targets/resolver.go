// Package targets resuelve nombres de competición entre los tres dominios
// de nombres (hoja de targets, exchange y feed en vivo) y proyecta la hoja
// a una tabla de targets consultable por los trackers.
package targets

import (
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// countryDemonyms mapea el nombre del país (forma de la hoja) al gentilicio
// que usa el exchange ("Italy-Serie A" vs "Italian Serie A").
var countryDemonyms = map[string]string{
	"argentina":   "argentinian",
	"brazil":      "brazilian",
	"bulgaria":    "bulgarian",
	"china":       "chinese",
	"croatia":     "croatian",
	"czech":       "czech",
	"denmark":     "danish",
	"england":     "english",
	"france":      "french",
	"germany":     "german",
	"greece":      "greek",
	"hungary":     "hungarian",
	"italy":       "italian",
	"japan":       "japanese",
	"netherlands": "dutch",
	"norway":      "norwegian",
	"poland":      "polish",
	"portugal":    "portuguese",
	"romania":     "romanian",
	"scotland":    "scottish",
	"serbia":      "serbian",
	"slovakia":    "slovakian",
	"slovenia":    "slovenian",
	"spain":       "spanish",
	"sweden":      "swedish",
	"switzerland": "swiss",
	"turkey":      "turkish",
	"usa":         "us",
	"wales":       "welsh",
}

// leagueAliases normaliza variantes de nombre de liga entre dominios.
var leagueAliases = map[string]string{
	"league one":        "league 1",
	"league two":        "league 2",
	"bundesliga 1":      "bundesliga",
	"3rd liga":          "3. liga",
	"prvaliga":          "prva liga",
	"brasilero serie a": "serie a",
	"brasilero serie b": "serie b",
	"chinese league":    "chinese super league",
	"rl northeast":      "regionalliga northeast",
	"mls":               "major league soccer",
}

// numberWords mapea cardinales y ordinales escritos a dígitos, para casos
// como "League Two" vs "League 2".
var numberWords = map[string]string{
	"one": "1", "two": "2", "three": "3", "four": "4", "five": "5",
	"six": "6", "seven": "7", "eight": "8", "nine": "9", "ten": "10",
	"first": "1", "second": "2", "third": "3", "fourth": "4", "fifth": "5",
	"1st": "1", "2nd": "2", "3rd": "3", "4th": "4", "5th": "5",
}

// stripDiacritics elimina marcas diacríticas (é→e, ü→u) antes del filtrado
// ASCII, para que "Süper Lig" no pierda letras.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lleva un nombre a su forma canónica de comparación: minúsculas,
// sin diacríticos, solo [a-z0-9 ], espacios colapsados y palabras numéricas
// convertidas a dígitos.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	if folded, _, err := transform.String(stripDiacritics, text); err == nil {
		text = folded
	}
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		if d, ok := numberWords[w]; ok {
			words[i] = d
		}
	}
	return strings.Join(words, " ")
}

// ParseComposite separa un nombre en formato "ID_Nombre" ("4_Serie A") en
// sus dos partes. Si no hay ID numérico devuelve id vacío y el nombre tal
// cual.
func ParseComposite(name string) (id, bare string) {
	idx := strings.Index(name, "_")
	if idx <= 0 {
		return "", strings.TrimSpace(name)
	}
	candidate := strings.TrimSpace(name[:idx])
	for _, r := range candidate {
		if r < '0' || r > '9' {
			return "", strings.TrimSpace(name)
		}
	}
	return candidate, strings.TrimSpace(name[idx+1:])
}

// SplitCountryLeague separa un nombre de la hoja tipo "Italy-Serie A" en
// país normalizado a gentilicio y liga normalizada por alias. Sin prefijo de
// país devuelve country vacío.
func SplitCountryLeague(name string) (country, league string) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if idx := strings.Index(lower, "-"); idx > 0 {
		country = strings.TrimSpace(lower[:idx])
		league = strings.TrimSpace(lower[idx+1:])
		if demonym, ok := countryDemonyms[country]; ok {
			country = demonym
		}
	} else {
		league = lower
	}
	if alias, ok := leagueAliases[league]; ok {
		league = alias
	}
	return country, league
}

// Similarity puntúa dos nombres normalizados en [0,1] sobre conjuntos de
// palabras. Si un conjunto es subconjunto del otro (inserciones de sponsor
// tipo "Sky Bet League 2") el denominador es el conjunto menor; si no,
// Jaccard estándar.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	common := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			common++
		}
	}

	if common == len(wordsA) || common == len(wordsB) {
		smaller := len(wordsA)
		if len(wordsB) < smaller {
			smaller = len(wordsB)
		}
		return float64(common) / float64(smaller)
	}

	union := len(wordsA) + len(wordsB) - common
	return float64(common) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

// Umbrales de aceptación por estrategia.
const (
	thresholdFullName       = 0.75 // similitud de nombre completo
	scoreLeagueExact        = 0.95 // igualdad exacta de liga normalizada
	scoreLeagueSubstring    = 0.90 // substring de liga sustancial (>=4 chars)
	thresholdLeagueFuzzy    = 0.85 // similitud difusa de liga
	scoreFullNameSubstring  = 0.80 // substring de nombre completo (>=6 chars)
	minLeagueSubstringChars = 4
	minFullSubstringChars   = 6
)

// Candidate es una entrada contra la que se resuelve: una competición con su
// ID de feed (opcional) y su nombre tal como aparece en su dominio.
type Candidate struct {
	ID   string
	Name string
}

// Match es el resultado de una resolución con su puntuación y estrategia.
type Match struct {
	Candidate Candidate
	Score     float64
	Strategy  string
}

// Resolve mapea un nombre de competición (formas "Serie A", "Italy-Serie A"
// o "4_Serie A") al candidato que representa la misma competición. Las
// estrategias se prueban en orden de menor a mayor permisividad y la primera
// que produce un candidato por encima de su umbral gana; a igualdad, la
// puntuación más alta.
//
// Si el nombre trae país, el candidato debe contener alguna de las formas
// conocidas del país o se rechaza sea cual sea la similitud textual: así
// "Serie A" no cruza de país.
func Resolve(query string, candidates []Candidate) (Match, bool) {
	queryID, queryName := ParseComposite(query)
	country, league := SplitCountryLeague(queryName)
	queryNorm := Normalize(queryName)
	leagueNorm := Normalize(league)

	// Estrategia 0: ID contra ID, sin ambigüedad posible.
	if queryID != "" {
		for _, c := range candidates {
			if c.ID != "" && c.ID == queryID {
				return Match{Candidate: c, Score: 1, Strategy: "id"}, true
			}
		}
	}

	type scored struct {
		match Match
		ok    bool
	}

	pickBest := func(fn func(c Candidate, norm string) (float64, bool), strategy string) scored {
		best := Match{Strategy: strategy}
		found := false
		for _, c := range candidates {
			candNorm := Normalize(c.Name)
			if country != "" && !containsCountry(candNorm, country) {
				continue
			}
			score, ok := fn(c, candNorm)
			if ok && score > best.Score {
				best.Candidate = c
				best.Score = score
				found = true
			}
		}
		return scored{match: best, ok: found}
	}

	// Estrategia 1: similitud del nombre completo normalizado.
	if s := pickBest(func(_ Candidate, candNorm string) (float64, bool) {
		sim := Similarity(queryNorm, candNorm)
		return sim, sim >= thresholdFullName
	}, "full-name"); s.ok {
		return s.match, true
	}

	// Estrategia 2: nombre de liga (exacto, substring sustancial, difuso).
	if leagueNorm != "" {
		if s := pickBest(func(c Candidate, candNorm string) (float64, bool) {
			_, candLeague := SplitCountryLeague(c.Name)
			candLeagueNorm := Normalize(candLeague)

			// El candidato puede traer gentilicio delante ("Italian Serie A"):
			// prueba también quitando la primera palabra.
			forms := []string{candNorm, candLeagueNorm}
			if words := strings.Fields(candNorm); len(words) > 1 {
				forms = append(forms, strings.Join(words[1:], " "))
			}

			best, ok := 0.0, false
			for _, form := range forms {
				if form == "" {
					continue
				}
				switch {
				case form == leagueNorm:
					if scoreLeagueExact > best {
						best, ok = scoreLeagueExact, true
					}
				case len(leagueNorm) >= minLeagueSubstringChars && len(form) >= minLeagueSubstringChars &&
					(strings.Contains(form, leagueNorm) || strings.Contains(leagueNorm, form)):
					if scoreLeagueSubstring > best {
						best, ok = scoreLeagueSubstring, true
					}
				default:
					if sim := Similarity(leagueNorm, form); sim >= thresholdLeagueFuzzy && sim > best {
						best, ok = sim, true
					}
				}
			}
			return best, ok
		}, "league"); s.ok {
			return s.match, true
		}
	}

	// Estrategia 3: substring de nombre completo, último recurso.
	if s := pickBest(func(_ Candidate, candNorm string) (float64, bool) {
		if len(queryNorm) >= minFullSubstringChars && len(candNorm) >= minFullSubstringChars &&
			(strings.Contains(candNorm, queryNorm) || strings.Contains(queryNorm, candNorm)) {
			return scoreFullNameSubstring, true
		}
		return 0, false
	}, "substring"); s.ok {
		return s.match, true
	}

	slog.Debug("competition unresolved", "query", query, "candidates", len(candidates))
	return Match{}, false
}

// containsCountry comprueba que el nombre candidato contiene alguna forma
// conocida del país (gentilicio o sustantivo).
func containsCountry(candNorm, country string) bool {
	words := wordSet(candNorm)
	if _, ok := words[country]; ok {
		return true
	}
	for noun, demonym := range countryDemonyms {
		if demonym == country {
			if _, ok := words[noun]; ok {
				return true
			}
		}
	}
	return false
}
