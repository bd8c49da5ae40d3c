package timing

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hal75-user/PC-System-Tool/pkg/logger"
	"github.com/hal75-user/PC-System-Tool/pkg/models"
	"github.com/hal75-user/PC-System-Tool/pkg/util"
)

// sectionEventPattern matches one filename part like "PC3GOAL" or
// "PC4START": a section name (uppercase letters plus digits) directly
// followed by the event type.
var sectionEventPattern = regexp.MustCompile(`^([A-Z]+\d+)(START|GOAL)$`)

// clockLayouts are the accepted wall-clock formats. Go's time.Parse accepts
// a trailing fractional second even when the layout has none, so
// "09:01:30.50" parses against "15:04:05".
var clockLayouts = []string{"15:04:05", "3:04:05"}

const secondsPerDay = 24 * 3600

// taggedPart is one (section, event) pair inferred from a filename.
type taggedPart struct {
	Section string
	Event   string
}

// Parser scans a race folder of timestamp CSV files and builds the
// per-competitor START and GOAL time maps. Time strings are kept verbatim;
// validation of their format is deferred to passage-time derivation.
type Parser struct {
	raceFolder string

	// startTime[bib][section] / goalTime[bib][section] = raw time string
	startTime map[int]map[string]string
	goalTime  map[int]map[string]string

	records []models.TimingRecord
}

// New creates a Parser for the given race folder.
func New(raceFolder string) *Parser {
	return &Parser{
		raceFolder: raceFolder,
		startTime:  make(map[int]map[string]string),
		goalTime:   make(map[int]map[string]string),
	}
}

// ParseAll processes every CSV file in the race folder. Parsing is
// all-or-nothing: the first structurally bad file aborts the batch with the
// filename in the error. Returns the number of files processed.
func (p *Parser) ParseAll() (int, error) {
	files, err := filepath.Glob(filepath.Join(p.raceFolder, "*.csv"))
	if err != nil {
		return 0, fmt.Errorf("scan race folder %s: %w", p.raceFolder, err)
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no CSV files found in race folder %s", p.raceFolder)
	}
	sort.Strings(files)

	for _, file := range files {
		if err := p.parseFile(file); err != nil {
			return 0, fmt.Errorf("%s: %w", filepath.Base(file), err)
		}
	}

	logger.Info("Parsed %d race files, %d bibs seen", len(files), len(p.AllBibs()))
	return len(files), nil
}

// parseFilename extracts the (section, event) pairs encoded in a filename.
// Parts that do not match the pattern are ignored.
func parseFilename(file string) []taggedPart {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

	var parts []taggedPart
	for _, part := range strings.Split(base, "_") {
		m := sectionEventPattern.FindStringSubmatch(part)
		if m != nil {
			parts = append(parts, taggedPart{Section: m[1], Event: m[2]})
		}
	}
	return parts
}

// FilenameSectionTokens returns the raw section+event tokens of a race
// filename, e.g. "PC3GOAL_PC4START.csv" yields ["PC3GOAL", "PC4START"].
// Non-matching parts are dropped.
func FilenameSectionTokens(file string) []string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

	var tokens []string
	for _, part := range strings.Split(base, "_") {
		if sectionEventPattern.MatchString(part) {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

func (p *Parser) parseFile(path string) error {
	tagged := parseFilename(path)
	if len(tagged) == 0 {
		// Not a timing file, skip silently.
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("file is empty")
	}

	timeIdx, numberIdx, laneIdx, err := inferColumns(rows[0])
	if err != nil {
		return err
	}

	file := filepath.Base(path)
	seen := make(map[int]bool)

	for i, row := range rows[1:] {
		numberCell := cellAt(row, numberIdx)
		if numberCell == "" {
			continue
		}

		bib, ok := parseBib(numberCell)
		if !ok {
			continue
		}
		if seen[bib] {
			return fmt.Errorf("bib %d appears more than once", bib)
		}

		// Rows with an empty time cell still become records so the
		// validator can inspect their lane column, but they register no
		// START/GOAL time and do not count toward the duplicate check.
		timeStr := cellAt(row, timeIdx)
		if timeStr != "" {
			seen[bib] = true
		}
		lane := ""
		if laneIdx >= 0 {
			lane = cellAt(row, laneIdx)
		}

		for _, tag := range tagged {
			if timeStr != "" {
				switch tag.Event {
				case models.EventStart:
					if p.startTime[bib] == nil {
						p.startTime[bib] = make(map[string]string)
					}
					p.startTime[bib][tag.Section] = timeStr
				case models.EventGoal:
					if p.goalTime[bib] == nil {
						p.goalTime[bib] = make(map[string]string)
					}
					p.goalTime[bib][tag.Section] = timeStr
				}
			}

			p.records = append(p.records, models.TimingRecord{
				File:    file,
				Section: tag.Section,
				Event:   tag.Event,
				Bib:     bib,
				Time:    timeStr,
				Lane:    lane,
				Row:     i,
			})
		}
	}
	return nil
}

// inferColumns locates the time column (first header containing "time",
// case-insensitive), the bib column immediately to its right and the
// lane/type column immediately to its left (-1 when there is none).
func inferColumns(header []string) (timeIdx, numberIdx, laneIdx int, err error) {
	timeIdx = -1
	for idx, col := range header {
		if strings.Contains(strings.ToLower(util.CleanCell(col)), "time") {
			timeIdx = idx
			break
		}
	}
	if timeIdx == -1 {
		return 0, 0, 0, fmt.Errorf("no time column found")
	}
	if timeIdx+1 >= len(header) {
		return 0, 0, 0, fmt.Errorf("no number column found (nothing right of the time column)")
	}
	return timeIdx, timeIdx + 1, timeIdx - 1, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return util.CleanCell(row[idx])
}

// parseBib converts a bib cell to an integer, tolerating "7.0"-style
// values via a float-then-truncate conversion.
func parseBib(s string) (int, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// parseClock parses one raw time string against the accepted layouts.
func parseClock(s string) (time.Time, error) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}

// elapsedSeconds returns GOAL minus START in seconds, rolling over midnight
// when the difference is negative.
func elapsedSeconds(startStr, goalStr string) (float64, bool) {
	start, err := parseClock(startStr)
	if err != nil {
		return 0, false
	}
	goal, err := parseClock(goalStr)
	if err != nil {
		return 0, false
	}

	diff := goal.Sub(start).Seconds()
	if diff < 0 {
		diff += secondsPerDay
	}
	return diff, true
}

// PassageTime returns the elapsed seconds between a bib's START and GOAL in
// one section. The second return is false when either endpoint is missing
// or unparsable; that is a soft no-data condition, not an error.
func (p *Parser) PassageTime(bib int, section string) (float64, bool) {
	startStr, ok := p.startTime[bib][section]
	if !ok {
		return 0, false
	}
	goalStr, ok := p.goalTime[bib][section]
	if !ok {
		return 0, false
	}
	return elapsedSeconds(startStr, goalStr)
}

// GroupPassageTime is PassageTime with the START taken from one section and
// the GOAL from another, measuring a grouped elapsed time across several PC
// checkpoints.
func (p *Parser) GroupPassageTime(bib int, startSection, goalSection string) (float64, bool) {
	startStr, ok := p.startTime[bib][startSection]
	if !ok {
		return 0, false
	}
	goalStr, ok := p.goalTime[bib][goalSection]
	if !ok {
		return 0, false
	}
	return elapsedSeconds(startStr, goalStr)
}

// HasStart reports whether a START time was recorded.
func (p *Parser) HasStart(bib int, section string) bool {
	_, ok := p.startTime[bib][section]
	return ok
}

// HasGoal reports whether a GOAL time was recorded.
func (p *Parser) HasGoal(bib int, section string) bool {
	_, ok := p.goalTime[bib][section]
	return ok
}

// AllBibs returns every bib seen in any timing file, ascending.
func (p *Parser) AllBibs() []int {
	set := make(map[int]bool)
	for bib := range p.startTime {
		set[bib] = true
	}
	for bib := range p.goalTime {
		set[bib] = true
	}

	bibs := make([]int, 0, len(set))
	for bib := range set {
		bibs = append(bibs, bib)
	}
	sort.Ints(bibs)
	return bibs
}

// Records returns every raw timing record in file-then-row order, for the
// validator.
func (p *Parser) Records() []models.TimingRecord {
	return p.records
}
