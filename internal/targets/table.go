package targets

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/alejandrodnm/laybot/internal/domain"
)

// Row es una fila cruda de la hoja de targets. CompetitionLive es la columna
// orientada al feed (acepta formato "ID_Nombre"); Competition es la columna
// legada.
type Row struct {
	Competition     string
	CompetitionLive string
	Result          string
	MinOdds         float64
	StakePercent    float64
}

// SheetReader carga las filas de la hoja de targets desde un path.
type SheetReader interface {
	ReadTargetRows(path string) ([]Row, error)
}

// Entry son los parámetros de apuesta de una fila: específicos de cada
// (competición, marcador), no constantes por competición.
type Entry struct {
	Score        domain.Scoreline
	MinOdds      float64
	StakePercent float64
}

// CompetitionTargets es la proyección acumulada de todas las filas de una
// competición.
type CompetitionTargets struct {
	Name          string
	CompetitionID string
	Targets       domain.ScoreSet
	Entries       []Entry
}

// Table es la proyección en memoria de la hoja de targets, cargada de forma
// perezosa y cacheada por path. Implementa domain.TargetSource.
type Table struct {
	reader SheetReader
	path   string

	mu     sync.RWMutex
	loaded bool
	byName map[string]*CompetitionTargets // clave: nombre normalizado
	byID   map[string]*CompetitionTargets
	names  []Candidate
}

// NewTable crea la tabla ligada a un path de hoja. La primera consulta
// dispara la carga.
func NewTable(reader SheetReader, path string) *Table {
	return &Table{reader: reader, path: path}
}

// Reload descarta la proyección cacheada; la siguiente consulta relee la
// hoja.
func (t *Table) Reload() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loaded = false
	t.byName = nil
	t.byID = nil
	t.names = nil
}

func (t *Table) ensureLoaded() error {
	t.mu.RLock()
	if t.loaded {
		t.mu.RUnlock()
		return nil
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loaded {
		return nil
	}

	rows, err := t.reader.ReadTargetRows(t.path)
	if err != nil {
		return fmt.Errorf("targets.Table: load %s: %w", t.path, err)
	}

	t.byName = make(map[string]*CompetitionTargets)
	t.byID = make(map[string]*CompetitionTargets)
	t.names = nil

	discarded := 0
	for _, row := range rows {
		key := strings.TrimSpace(row.CompetitionLive)
		if key == "" {
			key = strings.TrimSpace(row.Competition)
		}
		if key == "" {
			discarded++
			continue
		}

		score, err := parseResultCell(row.Result)
		if err != nil {
			slog.Warn("discarding target row", "competition", key, "result", row.Result, "err", err)
			discarded++
			continue
		}

		id, bare := ParseComposite(key)
		nameKey := Normalize(bare)

		ct, ok := t.byName[nameKey]
		if !ok {
			ct = &CompetitionTargets{
				Name:          bare,
				CompetitionID: id,
				Targets:       domain.ScoreSet{},
			}
			t.byName[nameKey] = ct
			if id != "" {
				t.byID[id] = ct
			}
			t.names = append(t.names, Candidate{ID: id, Name: bare})
		}
		ct.Targets[score] = struct{}{}
		ct.Entries = append(ct.Entries, Entry{
			Score:        score,
			MinOdds:      row.MinOdds,
			StakePercent: row.StakePercent,
		})
	}

	t.loaded = true
	slog.Info("target sheet loaded",
		"path", t.path,
		"competitions", len(t.byName),
		"rows", len(rows),
		"discarded", discarded,
	)
	return nil
}

// parseResultCell parsea la celda Result de forma defensiva: las hojas de
// cálculo convierten "1-1" en números o fechas con facilidad, y un target
// corrupto es peor que un target menos.
func parseResultCell(raw string) (domain.Scoreline, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.Scoreline{}, fmt.Errorf("empty result cell")
	}

	score, err := domain.ParseScore(s)
	if err != nil {
		return domain.Scoreline{}, err
	}
	// Un componente desorbitado delata una fecha autoconvertida
	// ("2001-01-01" parsea como 2001 a 1).
	if score.Home > 15 || score.Away > 15 {
		return domain.Scoreline{}, fmt.Errorf("implausible score %s, likely auto-converted cell", score)
	}
	return score, nil
}

// Lookup resuelve una competición (con ID de feed opcional) contra la hoja:
// primero por ID, luego por nombre vía el resolver.
func (t *Table) Lookup(competition, competitionID string) (*CompetitionTargets, bool) {
	if err := t.ensureLoaded(); err != nil {
		slog.Error("target sheet unavailable", "err", err)
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if competitionID != "" {
		if ct, ok := t.byID[competitionID]; ok {
			return ct, true
		}
	}

	query := competition
	if competitionID != "" && !strings.Contains(competition, "_") {
		query = competitionID + "_" + competition
	}
	if ct, ok := t.byName[Normalize(stripComposite(query))]; ok {
		return ct, true
	}

	match, ok := Resolve(query, t.names)
	if !ok {
		return nil, false
	}
	ct, ok := t.byName[Normalize(match.Candidate.Name)]
	return ct, ok
}

func stripComposite(name string) string {
	_, bare := ParseComposite(name)
	return bare
}

// Targets devuelve el conjunto de marcadores target para una competición.
// El conjunto vacío es la señal canónica de "sin información": competición
// no resuelta o hoja ilegible.
func (t *Table) Targets(competition, competitionID string) domain.ScoreSet {
	ct, ok := t.Lookup(competition, competitionID)
	if !ok {
		return domain.ScoreSet{}
	}
	return ct.Targets
}

// BettingEntry devuelve los parámetros de apuesta de la fila concreta
// (competición, marcador). Cada fila lleva sus propios min-odds y stake.
func (t *Table) BettingEntry(competition, competitionID string, score domain.Scoreline) (Entry, bool) {
	ct, ok := t.Lookup(competition, competitionID)
	if !ok {
		return Entry{}, false
	}
	for _, e := range ct.Entries {
		if e.Score == score {
			return e, true
		}
	}
	return Entry{}, false
}

// Competitions devuelve los nombres de competición de la hoja, para filtrar
// las consultas al feed.
func (t *Table) Competitions() []Candidate {
	if err := t.ensureLoaded(); err != nil {
		slog.Error("target sheet unavailable", "err", err)
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Candidate, len(t.names))
	copy(out, t.names)
	return out
}
