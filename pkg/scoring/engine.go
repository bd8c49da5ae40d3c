package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/hal75-user/PC-System-Tool/pkg/logger"
	"github.com/hal75-user/PC-System-Tool/pkg/models"
	"github.com/hal75-user/PC-System-Tool/pkg/settings"
	"github.com/hal75-user/PC-System-Tool/pkg/timing"
)

// Engine computes the result grid: one Result per (bib, section) pair,
// derived from the timing maps under the section's scoring rule. The grid
// is rebuilt wholesale on every CalculateAll call; only the injected status
// overrides survive between runs.
type Engine struct {
	tables  *settings.Loader
	race    *timing.Parser
	coBonus int

	// operator-supplied overrides, injected before calculation
	sectionStatus map[models.ResultKey]string
	finalStatus   map[int]string

	results map[models.ResultKey]*models.Result
	bibs    []int
}

// New creates an Engine over loaded settings and parsed timing data.
// coBonus is the fixed point value for a cleared CO section.
func New(tables *settings.Loader, race *timing.Parser, coBonus int) *Engine {
	return &Engine{
		tables:        tables,
		race:          race,
		coBonus:       coBonus,
		sectionStatus: make(map[models.ResultKey]string),
		finalStatus:   make(map[int]string),
		results:       make(map[models.ResultKey]*models.Result),
	}
}

// SectionType derives the scoring rule from a section name prefix.
func SectionType(name string) string {
	switch {
	case strings.HasPrefix(name, models.SectionPCG):
		return models.SectionPCG
	case strings.HasPrefix(name, models.SectionPC):
		return models.SectionPC
	case strings.HasPrefix(name, models.SectionCO):
		return models.SectionCO
	default:
		return models.SectionUnknown
	}
}

// SetSectionStatus injects a status override for one (bib, section) cell.
func (e *Engine) SetSectionStatus(bib int, section, status string) {
	e.sectionStatus[models.ResultKey{Bib: bib, Section: section}] = status
}

// SetSectionStatuses replaces all section overrides at once.
func (e *Engine) SetSectionStatuses(statuses map[models.ResultKey]string) {
	e.sectionStatus = make(map[models.ResultKey]string, len(statuses))
	for k, v := range statuses {
		e.sectionStatus[k] = v
	}
}

// SetFinalStatus injects an overall status override for one bib.
func (e *Engine) SetFinalStatus(bib int, status string) {
	e.finalStatus[bib] = status
}

// SetFinalStatuses replaces all overall overrides at once.
func (e *Engine) SetFinalStatuses(statuses map[int]string) {
	e.finalStatus = make(map[int]string, len(statuses))
	for k, v := range statuses {
		e.finalStatus[k] = v
	}
}

// FinalStatus returns the overall override for a bib, "" when none.
func (e *Engine) FinalStatus(bib int) string {
	return e.finalStatus[bib]
}

// SectionStatus returns the override for one cell, "" when none.
func (e *Engine) SectionStatus(bib int, section string) string {
	return e.sectionStatus[models.ResultKey{Bib: bib, Section: section}]
}

// CalculateAll rebuilds the whole result grid. Sections are processed in
// table order; bibs are the union of the roster and everyone seen in timing
// data, iterated in ascending bib order so ranking tie-breaks are
// deterministic.
func (e *Engine) CalculateAll() {
	set := make(map[int]bool)
	for _, bib := range e.race.AllBibs() {
		set[bib] = true
	}
	for bib := range e.tables.Entries() {
		set[bib] = true
	}

	e.bibs = make([]int, 0, len(set))
	for bib := range set {
		e.bibs = append(e.bibs, bib)
	}
	sort.Ints(e.bibs)

	e.results = make(map[models.ResultKey]*models.Result, len(e.bibs)*len(e.tables.Sections()))

	for _, name := range e.tables.SectionOrder() {
		switch SectionType(name) {
		case models.SectionPC:
			e.calculateRanked(name, e.directPassage(name))
		case models.SectionCO:
			e.calculateCO(name)
		case models.SectionPCG:
			e.calculatePCG(name)
		}
	}

	logger.Debug("Calculated %d result cells for %d bibs", len(e.results), len(e.bibs))
}

// passageFunc resolves the elapsed time for one bib in the section being
// calculated. Returning false means no data.
type passageFunc func(bib int) (float64, bool)

func (e *Engine) directPassage(section string) passageFunc {
	return func(bib int) (float64, bool) {
		return e.race.PassageTime(bib, section)
	}
}

// calculateRanked applies the PC rule: diff against target, ranking pool
// ordered by |diff| ascending (equal |diff| keeps ascending bib order), and
// points from the rank table. Shared by PC and PCG sections.
func (e *Engine) calculateRanked(section string, passage passageFunc) {
	target, ok := e.tables.TargetTime(section)
	if !ok {
		return
	}

	type poolEntry struct {
		bib     int
		absDiff float64
	}
	var pool []poolEntry

	for _, bib := range e.bibs {
		key := models.ResultKey{Bib: bib, Section: section}
		res := &models.Result{}
		e.results[key] = res

		if status := e.sectionStatus[key]; status != "" {
			res.Status = status
			if status != models.StatusNotClassified {
				continue
			}
			// N.C. keeps its time and diff but stays out of the pool.
		}

		t, ok := passage(bib)
		if !ok {
			continue
		}
		pt := t
		diff := t - float64(target)
		res.PassageTime = &pt
		res.Diff = &diff

		if res.Status == "" {
			pool = append(pool, poolEntry{bib: bib, absDiff: math.Abs(diff)})
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].absDiff < pool[j].absDiff
	})

	for i, entry := range pool {
		res := e.results[models.ResultKey{Bib: entry.bib, Section: section}]
		res.Rank = i + 1
		res.Point = e.tables.PointFor(res.Rank)
	}
}

// calculateCO applies the CO rule: the clear bonus is earned only inside
// the window [0, 60) seconds after the target time. Early arrivals do not
// clear. No ranking.
func (e *Engine) calculateCO(section string) {
	target, ok := e.tables.TargetTime(section)
	if !ok {
		return
	}

	for _, bib := range e.bibs {
		key := models.ResultKey{Bib: bib, Section: section}
		res := &models.Result{}
		e.results[key] = res

		if status := e.sectionStatus[key]; status != "" {
			res.Status = status
			if status != models.StatusNotClassified {
				continue
			}
		}

		t, ok := e.race.PassageTime(bib, section)
		if !ok {
			continue
		}
		pt := t
		diff := t - float64(target)
		res.PassageTime = &pt
		res.Diff = &diff

		if diff >= 0 && diff < 60 {
			res.Point = e.coBonus
		}
	}
}

// calculatePCG resolves the group's PC sections and measures the elapsed
// time from the first one's START to the last one's GOAL. A group with
// fewer than two PC sections produces no results for the PCG section.
func (e *Engine) calculatePCG(section string) {
	sec, ok := e.tables.SectionByName(section)
	if !ok {
		return
	}

	pcSections := e.tables.PCSectionsInGroup(sec.Group)
	if len(pcSections) < 2 {
		logger.Warn("PCG section %s skipped: group %d has %d PC sections, need 2",
			section, sec.Group, len(pcSections))
		return
	}

	startSection := pcSections[0]
	goalSection := pcSections[len(pcSections)-1]

	e.calculateRanked(section, func(bib int) (float64, bool) {
		return e.race.GroupPassageTime(bib, startSection, goalSection)
	})
}

// Result returns one cell of the grid, nil when the section produced no
// results (unknown type or skipped PCG).
func (e *Engine) Result(bib int, section string) *models.Result {
	return e.results[models.ResultKey{Bib: bib, Section: section}]
}

// Results exposes the full grid.
func (e *Engine) Results() map[models.ResultKey]*models.Result {
	return e.results
}

// Bibs returns the bibs covered by the last CalculateAll, ascending.
func (e *Engine) Bibs() []int {
	return e.bibs
}

// PureScore sums every point a bib earned, without coefficients.
func (e *Engine) PureScore(bib int) int {
	total := 0
	for key, res := range e.results {
		if key.Bib == bib {
			total += res.Point
		}
	}
	return total
}

// TotalScore computes the coefficient-weighted score:
//
//	int((PC + PCG points) * coef * ageCoef + CO points)
//
// The int conversion truncates toward zero, which is fine because totals
// are never negative. The score is computed even for bibs carrying a final
// status override; excluding them from standings is the caller's decision.
func (e *Engine) TotalScore(bib int) int {
	return e.ScoreForSections(bib, e.tables.SectionOrder())
}

// ScoreForSections is TotalScore restricted to a subset of section names,
// for day- or group-scoped sub-leaderboards. Sections absent from the bib's
// grid are skipped silently.
func (e *Engine) ScoreForSections(bib int, sections []string) int {
	entry, ok := e.tables.Entry(bib)
	if !ok {
		return 0
	}

	pcTotal := 0
	coTotal := 0
	for _, section := range sections {
		res, ok := e.results[models.ResultKey{Bib: bib, Section: section}]
		if !ok {
			continue
		}
		switch SectionType(section) {
		case models.SectionPC, models.SectionPCG:
			pcTotal += res.Point
		case models.SectionCO:
			coTotal += res.Point
		}
	}

	return int(float64(pcTotal)*entry.Coef*entry.AgeCoef + float64(coTotal))
}
