package settings

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/hal75-user/PC-System-Tool/pkg/logger"
	"github.com/hal75-user/PC-System-Tool/pkg/models"
	"github.com/hal75-user/PC-System-Tool/pkg/util"
)

// Loader reads the three settings tables (entries, point, section) from one
// folder. Each table is located by a fuzzy filename match; exactly one
// candidate must exist. All tables are immutable once loaded.
type Loader struct {
	folder string

	entries  map[int]models.Entry
	points   map[int]int
	sections []models.Section

	// indexes built at load time so group/type/day queries are map lookups
	nameIdx   map[string]int
	byGroup   map[int][]models.Section
	pcByGroup map[int][]string
	byDay     map[int][]string
	hasDay    bool
}

// New creates a Loader for the given settings folder.
func New(folder string) *Loader {
	return &Loader{
		folder:    folder,
		entries:   make(map[int]models.Entry),
		points:    make(map[int]int),
		nameIdx:   make(map[string]int),
		byGroup:   make(map[int][]models.Section),
		pcByGroup: make(map[int][]string),
		byDay:     make(map[int][]string),
	}
}

// LoadAll reads all three tables. The first failing table aborts the load;
// dependent steps must not run after an error.
func (l *Loader) LoadAll() error {
	if err := l.loadEntries(); err != nil {
		return err
	}
	if err := l.loadPoints(); err != nil {
		return err
	}
	if err := l.loadSections(); err != nil {
		return err
	}
	logger.Info("Settings loaded: %d entries, %d point ranks, %d sections",
		len(l.entries), len(l.points), len(l.sections))
	return nil
}

// findFile resolves a fuzzy pattern like "entries*.csv" to exactly one file.
func (l *Loader) findFile(pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(l.folder, pattern))
	if err != nil {
		return "", fmt.Errorf("search for %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no %s file found in %s", pattern, l.folder)
	}
	if len(matches) > 1 {
		sort.Strings(matches)
		return "", fmt.Errorf("multiple %s files found in %s: %v", pattern, l.folder, matches)
	}
	return matches[0], nil
}

// readTable reads a CSV file into a header map and data rows. The first
// header cell may carry a UTF-8 BOM.
func readTable(path string) (map[string]int, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s is empty", filepath.Base(path))
	}

	header := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		header[util.CleanCell(col)] = i
	}
	return header, rows[1:], nil
}

// requireColumns verifies that every required column is present.
func requireColumns(file string, header map[string]int, required []string) error {
	var missing []string
	for _, col := range required {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s is missing required columns: %v", file, missing)
	}
	return nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return util.CleanCell(row[idx])
}

func optionalCell(row []string, header map[string]int, name string) string {
	idx, ok := header[name]
	if !ok {
		return ""
	}
	return cell(row, idx)
}

// intCell tolerates "7.0"-style values the way spreadsheet exports produce
// them.
func intCell(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

func floatCell(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

func (l *Loader) loadEntries() error {
	path, err := l.findFile("entries*.csv")
	if err != nil {
		return err
	}
	file := filepath.Base(path)

	header, rows, err := readTable(path)
	if err != nil {
		return err
	}
	if err := requireColumns(file, header,
		[]string{"No", "DriverAge", "CoDriverAge", "CarYear", "Coef", "AgeCoef"}); err != nil {
		return err
	}

	for _, row := range rows {
		bib, ok := intCell(cell(row, header["No"]))
		if !ok || bib == 0 {
			continue
		}

		age, _ := intCell(cell(row, header["DriverAge"]))
		coAge, _ := intCell(cell(row, header["CoDriverAge"]))
		carYear, _ := intCell(cell(row, header["CarYear"]))

		l.entries[bib] = models.Entry{
			Bib:          bib,
			DriverName:   optionalCell(row, header, "DriverName"),
			DriverAge:    age,
			CoDriverName: optionalCell(row, header, "CoDriverName"),
			CoDriverAge:  coAge,
			CarName:      optionalCell(row, header, "CarName"),
			CarYear:      carYear,
			CarClass:     optionalCell(row, header, "CarClass"),
			Coef:         floatCell(cell(row, header["Coef"]), 1.0),
			AgeCoef:      floatCell(cell(row, header["AgeCoef"]), 1.0),
		}
	}
	return nil
}

func (l *Loader) loadPoints() error {
	path, err := l.findFile("point*.csv")
	if err != nil {
		return err
	}
	file := filepath.Base(path)

	header, rows, err := readTable(path)
	if err != nil {
		return err
	}
	if err := requireColumns(file, header, []string{"Order", "Point"}); err != nil {
		return err
	}

	for _, row := range rows {
		rank, ok := intCell(cell(row, header["Order"]))
		if !ok {
			continue
		}
		point, ok := intCell(cell(row, header["Point"]))
		if !ok {
			continue
		}
		l.points[rank] = point
	}
	return nil
}

func (l *Loader) loadSections() error {
	path, err := l.findFile("section*.csv")
	if err != nil {
		return err
	}
	file := filepath.Base(path)

	header, rows, err := readTable(path)
	if err != nil {
		return err
	}
	if err := requireColumns(file, header,
		[]string{"type", "section", "name", "time", "GROUP"}); err != nil {
		return err
	}
	_, l.hasDay = header["DAY"]

	for _, row := range rows {
		name := cell(row, header["section"])
		if name == "" {
			continue
		}
		if _, dup := l.nameIdx[name]; dup {
			return fmt.Errorf("%s: section %s is defined more than once", file, name)
		}

		target, ok := intCell(cell(row, header["time"]))
		if !ok {
			return fmt.Errorf("%s: section %s has no numeric target time", file, name)
		}
		group, _ := intCell(cell(row, header["GROUP"]))

		sec := models.Section{
			Type:        cell(row, header["type"]),
			Name:        name,
			DisplayName: cell(row, header["name"]),
			TargetTime:  target,
			Group:       group,
		}
		if l.hasDay {
			sec.Day, _ = intCell(cell(row, header["DAY"]))
		}

		l.nameIdx[name] = len(l.sections)
		l.sections = append(l.sections, sec)

		l.byGroup[group] = append(l.byGroup[group], sec)
		if sec.Type == models.SectionPC {
			l.pcByGroup[group] = append(l.pcByGroup[group], name)
		}
		if l.hasDay {
			l.byDay[sec.Day] = append(l.byDay[sec.Day], name)
		}
	}
	return nil
}

// Entries returns the full roster keyed by bib.
func (l *Loader) Entries() map[int]models.Entry {
	return l.entries
}

// Entry looks up one roster row.
func (l *Loader) Entry(bib int) (models.Entry, bool) {
	e, ok := l.entries[bib]
	return e, ok
}

// Bibs returns every rostered bib in ascending order.
func (l *Loader) Bibs() []int {
	bibs := make([]int, 0, len(l.entries))
	for bib := range l.entries {
		bibs = append(bibs, bib)
	}
	sort.Ints(bibs)
	return bibs
}

// PointFor returns the points awarded for a rank; ranks beyond the table
// earn nothing.
func (l *Loader) PointFor(rank int) int {
	return l.points[rank]
}

// Sections returns all sections in table order.
func (l *Loader) Sections() []models.Section {
	return l.sections
}

// SectionOrder returns the section names in table order.
func (l *Loader) SectionOrder() []string {
	names := make([]string, len(l.sections))
	for i, sec := range l.sections {
		names[i] = sec.Name
	}
	return names
}

// SectionByName looks up one section definition.
func (l *Loader) SectionByName(name string) (models.Section, bool) {
	idx, ok := l.nameIdx[name]
	if !ok {
		return models.Section{}, false
	}
	return l.sections[idx], true
}

// TargetTime returns the target time in seconds for a section.
func (l *Loader) TargetTime(name string) (int, bool) {
	sec, ok := l.SectionByName(name)
	if !ok {
		return 0, false
	}
	return sec.TargetTime, true
}

// SectionsByGroup returns the sections sharing a group number, in table order.
func (l *Loader) SectionsByGroup(group int) []models.Section {
	return l.byGroup[group]
}

// PCSectionsInGroup returns the names of PC-typed sections in a group,
// in table order. PCG sections are excluded by their table type.
func (l *Loader) PCSectionsInGroup(group int) []string {
	return l.pcByGroup[group]
}

// SectionsByDay returns the section names for one day. Empty when the
// section table has no DAY column.
func (l *Loader) SectionsByDay(day int) []string {
	if !l.hasDay {
		return nil
	}
	return l.byDay[day]
}

// HasDayColumn reports whether day-scoped sub-leaderboards are available.
func (l *Loader) HasDayColumn() bool {
	return l.hasDay
}

// MaxDay returns the highest day number, 0 without a DAY column.
func (l *Loader) MaxDay() int {
	if !l.hasDay {
		return 0
	}
	max := 0
	for day := range l.byDay {
		if day > max {
			max = day
		}
	}
	return max
}
