package sheet

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/alejandrodnm/laybot/internal/targets"
)

// Reader carga la hoja de targets desde un xlsx. Implementa
// targets.SheetReader. Soporta el formato viejo (columna Competition) y
// el nuevo (Competition-Live con IDs del feed); Min_Odds y Stake son
// por fila.
type Reader struct{}

// ReadTargetRows lee la primera hoja del libro. La primera fila es la
// cabecera; los nombres de columna se casan ignorando mayúsculas,
// espacios y guiones bajos.
func (Reader) ReadTargetRows(path string) ([]targets.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("sheet.ReadTargetRows: open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("sheet.ReadTargetRows: %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("sheet.ReadTargetRows: read %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet.ReadTargetRows: %s has no data rows", path)
	}

	cols := headerIndex(rows[0])
	if cols.competition < 0 && cols.competitionLive < 0 {
		return nil, fmt.Errorf("sheet.ReadTargetRows: no Competition or Competition-Live column in %s", path)
	}
	if cols.result < 0 {
		return nil, fmt.Errorf("sheet.ReadTargetRows: no Result column in %s", path)
	}

	var out []targets.Row
	for _, raw := range rows[1:] {
		row := targets.Row{
			Competition:     cellAt(raw, cols.competition),
			CompetitionLive: cellAt(raw, cols.competitionLive),
			Result:          cellAt(raw, cols.result),
			MinOdds:         numberAt(raw, cols.minOdds),
			StakePercent:    numberAt(raw, cols.stake),
		}
		if row.Competition == "" && row.CompetitionLive == "" && row.Result == "" {
			continue
		}
		out = append(out, row)
	}

	slog.Info("target sheet read", "path", path, "rows", len(out))
	return out, nil
}

type columnIndex struct {
	competition     int
	competitionLive int
	result          int
	minOdds         int
	stake           int
}

func headerIndex(header []string) columnIndex {
	cols := columnIndex{competition: -1, competitionLive: -1, result: -1, minOdds: -1, stake: -1}
	for i, name := range header {
		switch normalizeHeader(name) {
		case "competition":
			cols.competition = i
		case "competitionlive":
			cols.competitionLive = i
		case "result":
			cols.result = i
		case "minodds":
			cols.minOdds = i
		case "stake":
			cols.stake = i
		}
	}
	return cols
}

func normalizeHeader(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	for _, r := range []string{" ", "_", "-"} {
		s = strings.ReplaceAll(s, r, "")
	}
	return s
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// numberAt parsea una celda numérica. Las hojas exportadas a veces traen
// coma decimal ("1,5"); cero significa "usar el default".
func numberAt(row []string, idx int) float64 {
	raw := cellAt(row, idx)
	if raw == "" {
		return 0
	}
	raw = strings.ReplaceAll(raw, ",", ".")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		slog.Warn("unparseable numeric cell in target sheet", "value", raw)
		return 0
	}
	return v
}
