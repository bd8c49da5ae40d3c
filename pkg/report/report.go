package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/hal75-user/PC-System-Tool/pkg/models"
	"github.com/hal75-user/PC-System-Tool/pkg/scoring"
	"github.com/hal75-user/PC-System-Tool/pkg/settings"
)

// StandingRow is one line of the overall standings. Pos carries either the
// rank as digits or the bib's final status code; final-status bibs are
// listed after every ranked bib but keep their computed score.
type StandingRow struct {
	Pos        string
	Bib        int
	DriverName string
	CarName    string
	CarClass   string
	PureScore  int
	TotalScore int
}

// Standings ranks every bib by total score, descending; equal scores order
// by bib ascending. Bibs with a final status override are excluded from
// ranking and appended with their status in the Pos column.
func Standings(eng *scoring.Engine, tables *settings.Loader) []StandingRow {
	var ranked, withStatus []StandingRow

	for _, bib := range eng.Bibs() {
		entry, _ := tables.Entry(bib)
		row := StandingRow{
			Bib:        bib,
			DriverName: entry.DriverName,
			CarName:    entry.CarName,
			CarClass:   entry.CarClass,
			PureScore:  eng.PureScore(bib),
			TotalScore: eng.TotalScore(bib),
		}
		if status := eng.FinalStatus(bib); status != "" {
			row.Pos = status
			withStatus = append(withStatus, row)
		} else {
			ranked = append(ranked, row)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalScore != ranked[j].TotalScore {
			return ranked[i].TotalScore > ranked[j].TotalScore
		}
		return ranked[i].Bib < ranked[j].Bib
	})
	for i := range ranked {
		ranked[i].Pos = strconv.Itoa(i + 1)
	}

	return append(ranked, withStatus...)
}

// StandingsForSections builds a sub-leaderboard over a subset of sections,
// e.g. one day or one group.
func StandingsForSections(eng *scoring.Engine, tables *settings.Loader, sections []string) []StandingRow {
	var ranked, withStatus []StandingRow

	for _, bib := range eng.Bibs() {
		entry, _ := tables.Entry(bib)
		row := StandingRow{
			Bib:        bib,
			DriverName: entry.DriverName,
			CarName:    entry.CarName,
			CarClass:   entry.CarClass,
			TotalScore: eng.ScoreForSections(bib, sections),
		}
		if status := eng.FinalStatus(bib); status != "" {
			row.Pos = status
			withStatus = append(withStatus, row)
		} else {
			ranked = append(ranked, row)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalScore != ranked[j].TotalScore {
			return ranked[i].TotalScore > ranked[j].TotalScore
		}
		return ranked[i].Bib < ranked[j].Bib
	})
	for i := range ranked {
		ranked[i].Pos = strconv.Itoa(i + 1)
	}

	return append(ranked, withStatus...)
}

// detailCells renders the four cells (time, diff, rank, point) for one
// result. RIT/BLNK replace every cell with the status code; N.C. keeps the
// real times and shows the status in the rank column.
func detailCells(res *models.Result, sectionType string) (string, string, string, string) {
	if res == nil {
		return scoring.NoData, scoring.NoData, scoring.NoData, "0"
	}

	switch res.Status {
	case "":
	case models.StatusNotClassified:
		return scoring.FormatTime(res.PassageTime), scoring.FormatDiff(res.Diff),
			res.Status, strconv.Itoa(res.Point)
	default:
		return res.Status, res.Status, res.Status, "0"
	}

	rank := scoring.NoData
	if (sectionType == models.SectionPC || sectionType == models.SectionPCG) && res.Rank > 0 {
		rank = strconv.Itoa(res.Rank)
	}
	return scoring.FormatTime(res.PassageTime), scoring.FormatDiff(res.Diff),
		rank, strconv.Itoa(res.Point)
}

func detailHeader(tables *settings.Loader) []string {
	header := []string{"Bib"}
	for _, name := range tables.SectionOrder() {
		header = append(header,
			name+"_time", name+"_diff", name+"_rank", name+"_point")
	}
	return append(header, "Total")
}

func detailRow(eng *scoring.Engine, tables *settings.Loader, bib int) []string {
	row := []string{strconv.Itoa(bib)}
	for _, name := range tables.SectionOrder() {
		t, d, r, p := detailCells(eng.Result(bib, name), scoring.SectionType(name))
		row = append(row, t, d, r, p)
	}
	return append(row, strconv.Itoa(eng.TotalScore(bib)))
}

// WriteDetailCSV writes the full result grid as CSV, one row per bib in
// ascending bib order.
func WriteDetailCSV(w io.Writer, eng *scoring.Engine, tables *settings.Loader) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(detailHeader(tables)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, bib := range eng.Bibs() {
		if err := cw.Write(detailRow(eng, tables, bib)); err != nil {
			return fmt.Errorf("write row for bib %d: %w", bib, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderDetail renders the result grid as a plain-text table.
func RenderDetail(eng *scoring.Engine, tables *settings.Loader) string {
	var b strings.Builder

	header := detailHeader(tables)
	widths := make([]int, len(header))
	rows := [][]string{header}
	for _, bib := range eng.Bibs() {
		rows = append(rows, detailRow(eng, tables, bib))
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[i], cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderStandings renders standings as a plain-text table.
func RenderStandings(rows []StandingRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %-5s %-20s %-20s %-6s %8s %8s\n",
		"Pos", "Bib", "Driver", "Car", "Class", "Point", "Total")
	for _, row := range rows {
		fmt.Fprintf(&b, "%-6s %-5d %-20s %-20s %-6s %8d %8d\n",
			row.Pos, row.Bib, row.DriverName, row.CarName, row.CarClass,
			row.PureScore, row.TotalScore)
	}
	return b.String()
}
