package validate

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hal75-user/PC-System-Tool/pkg/models"
	"github.com/hal75-user/PC-System-Tool/pkg/scoring"
	"github.com/hal75-user/PC-System-Tool/pkg/timing"
)

// deficiencyThreshold is the PC deviation (seconds) beyond which a timed
// bib counts against its checkpoint in the measurement-deficiency check.
const deficiencyThreshold = 1.0

// All runs the full battery of consistency checks. Records must carry any
// operator status overrides stamped into their Status field. results may be
// nil; the post-calculation measurement check then stays off (the
// documented two-pass protocol: once before calculation, once after with
// the result grid attached). The functions here never mutate their inputs.
func All(raceFolder string, records []models.TimingRecord, sections []models.Section,
	results map[models.ResultKey]*models.Result) []Finding {

	var findings []Finding
	findings = append(findings, CheckDuplicateFilenames(raceFolder)...)
	findings = append(findings, CheckDuplicateBibs(records)...)
	findings = append(findings, CheckSectionPassageOrder(records, sections)...)
	findings = append(findings, CheckBibPassageOrder(records, sections)...)
	findings = append(findings, CheckStatusWithTime(records)...)
	findings = append(findings, CheckManualMeasurements(records)...)
	if results != nil {
		findings = append(findings, CheckMeasurementDeficiency(sections, results)...)
	}
	return findings
}

// CheckDuplicateFilenames flags section tokens claimed by more than one
// race file, e.g. PC3GOAL.csv next to PC3GOAL_PC4START.csv. Assignment is
// ambiguous then, so this is a hard error.
func CheckDuplicateFilenames(raceFolder string) []Finding {
	entries, err := os.ReadDir(raceFolder)
	if err != nil {
		return nil
	}

	tokenFiles := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		for _, token := range timing.FilenameSectionTokens(entry.Name()) {
			tokenFiles[token] = append(tokenFiles[token], entry.Name())
		}
	}

	tokens := make([]string, 0, len(tokenFiles))
	for token := range tokenFiles {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	var findings []Finding
	for _, token := range tokens {
		files := tokenFiles[token]
		if len(files) < 2 {
			continue
		}
		sort.Strings(files)
		findings = append(findings, Finding{
			Kind: KindDuplicateFilename,
			Message: fmt.Sprintf("section %s is claimed by %d files: %s",
				token, len(files), strings.Join(files, ", ")),
			Details:     DuplicateFilenameDetails{Token: token, Files: files},
			Key:         key(KindDuplicateFilename, token),
			Confirmable: false,
		})
	}
	return findings
}

// CheckDuplicateBibs flags a bib recorded more than once within one
// section and event type. Hard error: the assignment is ambiguous.
func CheckDuplicateBibs(records []models.TimingRecord) []Finding {
	type cellKey struct {
		section string
		event   string
		bib     int
	}
	counts := make(map[cellKey]int)
	var order []cellKey
	for _, rec := range records {
		if rec.Time == "" {
			continue
		}
		k := cellKey{section: rec.Section, event: rec.Event, bib: rec.Bib}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}

	var findings []Finding
	seen := make(map[string]bool)
	for _, k := range order {
		if counts[k] < 2 {
			continue
		}
		fk := key(KindDuplicateBib, k.section, k.bib)
		if seen[fk] {
			continue
		}
		seen[fk] = true
		findings = append(findings, Finding{
			Kind: KindDuplicateBib,
			Message: fmt.Sprintf("bib %d appears %d times in section %s",
				k.bib, counts[k], k.section),
			Details:     DuplicateBibDetails{Section: k.section, Bib: k.bib, Count: counts[k]},
			Key:         fk,
			Confirmable: false,
		})
	}
	return findings
}

// arrivalOrder returns the bibs of timed, non-status records for one
// section, in first-appearance order.
func arrivalOrder(records []models.TimingRecord, section string) []int {
	var bibs []int
	seen := make(map[int]bool)
	for _, rec := range records {
		if rec.Section != section || rec.Status != "" || rec.Time == "" {
			continue
		}
		if !seen[rec.Bib] {
			seen[rec.Bib] = true
			bibs = append(bibs, rec.Bib)
		}
	}
	return bibs
}

func commonSubsequence(order []int, common map[int]bool) []int {
	var out []int
	for _, bib := range order {
		if common[bib] {
			out = append(out, bib)
		}
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CheckSectionPassageOrder compares, within each group, the bib arrival
// order of every section against the group's first section. Order
// mismatches, missing bibs and extra bibs for all deviating sections of a
// group are merged into one finding.
func CheckSectionPassageOrder(records []models.TimingRecord, sections []models.Section) []Finding {
	groups := groupSections(sections)

	var findings []Finding
	for _, group := range sortedGroups(groups) {
		members := groups[group]
		if len(members) < 2 {
			continue
		}

		baseline := members[0]
		baseOrder := arrivalOrder(records, baseline)
		if len(baseOrder) == 0 {
			continue
		}
		baseSet := toSet(baseOrder)

		var mismatches []SectionOrderMismatch
		for _, section := range members[1:] {
			curOrder := arrivalOrder(records, section)
			if len(curOrder) == 0 {
				continue
			}
			curSet := toSet(curOrder)

			common := make(map[int]bool)
			for bib := range baseSet {
				if curSet[bib] {
					common[bib] = true
				}
			}

			var missing, extra []int
			for bib := range baseSet {
				if !curSet[bib] {
					missing = append(missing, bib)
				}
			}
			for bib := range curSet {
				if !baseSet[bib] {
					extra = append(extra, bib)
				}
			}
			sort.Ints(missing)
			sort.Ints(extra)

			mismatch := SectionOrderMismatch{
				Section: section,
				Missing: missing,
				Extra:   extra,
			}

			orderDiffers := false
			if len(common) >= 2 {
				baseCommon := commonSubsequence(baseOrder, common)
				curCommon := commonSubsequence(curOrder, common)
				if !equalInts(baseCommon, curCommon) {
					orderDiffers = true
					mismatch.BaselineOrder = baseCommon
					mismatch.ObservedOrder = curCommon
				}
			}

			if orderDiffers || len(missing) > 0 || len(extra) > 0 {
				mismatches = append(mismatches, mismatch)
			}
		}

		if len(mismatches) == 0 {
			continue
		}
		deviating := make([]string, len(mismatches))
		for i, m := range mismatches {
			deviating[i] = m.Section
		}
		findings = append(findings, Finding{
			Kind: KindSectionOrder,
			Message: fmt.Sprintf("group %d: passage order deviates from baseline %s in %s",
				group, baseline, strings.Join(deviating, ", ")),
			Details: SectionOrderDetails{
				Group:      group,
				Baseline:   baseline,
				Mismatches: mismatches,
			},
			Key:         key(KindSectionOrder, group, baseline),
			Confirmable: true,
		})
	}
	return findings
}

// CheckBibPassageOrder verifies per bib, per group, that the group's
// sections were visited in definition order and that no section between
// the first and last visited one was skipped.
func CheckBibPassageOrder(records []models.TimingRecord, sections []models.Section) []Finding {
	groups := groupSections(sections)
	sectionGroup := make(map[string]int)
	for _, sec := range sections {
		if sec.Group != 0 {
			sectionGroup[sec.Name] = sec.Group
		}
	}

	// visited[bib][group] = sections in first-appearance order
	visited := make(map[int]map[int][]string)
	visitedSet := make(map[int]map[int]map[string]bool)
	var bibOrder []int
	for _, rec := range records {
		if rec.Status != "" || rec.Time == "" {
			continue
		}
		group, ok := sectionGroup[rec.Section]
		if !ok {
			continue
		}
		if visited[rec.Bib] == nil {
			visited[rec.Bib] = make(map[int][]string)
			visitedSet[rec.Bib] = make(map[int]map[string]bool)
			bibOrder = append(bibOrder, rec.Bib)
		}
		if visitedSet[rec.Bib][group] == nil {
			visitedSet[rec.Bib][group] = make(map[string]bool)
		}
		if !visitedSet[rec.Bib][group][rec.Section] {
			visitedSet[rec.Bib][group][rec.Section] = true
			visited[rec.Bib][group] = append(visited[rec.Bib][group], rec.Section)
		}
	}
	sort.Ints(bibOrder)

	var findings []Finding
	for _, bib := range bibOrder {
		for _, group := range sortedGroupKeys(visited[bib]) {
			actual := visited[bib][group]
			if len(actual) < 2 {
				continue
			}

			defOrder := groups[group]
			defIdx := make(map[string]int, len(defOrder))
			for i, name := range defOrder {
				defIdx[name] = i
			}

			// Definition order restricted to what the bib actually visited.
			actualSet := make(map[string]bool, len(actual))
			for _, name := range actual {
				actualSet[name] = true
			}
			var expected []string
			for _, name := range defOrder {
				if actualSet[name] {
					expected = append(expected, name)
				}
			}

			inverted := false
			for i := 0; i+1 < len(actual); i++ {
				if defIdx[actual[i]] > defIdx[actual[i+1]] {
					inverted = true
					break
				}
			}

			// Sections the bib should have passed between its first and
			// last visited position, but didn't.
			first, last := len(defOrder), -1
			for _, name := range actual {
				if defIdx[name] < first {
					first = defIdx[name]
				}
				if defIdx[name] > last {
					last = defIdx[name]
				}
			}
			var skipped []string
			for i := first; i <= last; i++ {
				if !actualSet[defOrder[i]] {
					skipped = append(skipped, defOrder[i])
				}
			}

			if !inverted && len(skipped) == 0 {
				continue
			}
			findings = append(findings, Finding{
				Kind: KindBibOrder,
				Message: fmt.Sprintf("bib %d passed group %d sections as %s, expected %s",
					bib, group, strings.Join(actual, " > "), strings.Join(expected, " > ")),
				Details: BibOrderDetails{
					Bib:      bib,
					Group:    group,
					Expected: expected,
					Actual:   actual,
					Skipped:  skipped,
				},
				Key:         key(KindBibOrder, bib, group),
				Confirmable: true,
			})
		}
	}
	return findings
}

// CheckStatusWithTime flags RIT or BLNK cells that still carry a recorded
// START or GOAL time. A retired or absent competitor should have none.
func CheckStatusWithTime(records []models.TimingRecord) []Finding {
	type cellKey struct {
		section string
		bib     int
	}
	type cellState struct {
		status   string
		hasStart bool
		hasGoal  bool
	}
	cells := make(map[cellKey]*cellState)
	var order []cellKey

	for _, rec := range records {
		if rec.Status != models.StatusRetired && rec.Status != models.StatusBlank {
			continue
		}
		if rec.Time == "" {
			continue
		}
		k := cellKey{section: rec.Section, bib: rec.Bib}
		state, ok := cells[k]
		if !ok {
			state = &cellState{status: rec.Status}
			cells[k] = state
			order = append(order, k)
		}
		if rec.Event == models.EventStart {
			state.hasStart = true
		} else {
			state.hasGoal = true
		}
	}

	var findings []Finding
	for _, k := range order {
		state := cells[k]
		findings = append(findings, Finding{
			Kind: KindStatusWithTime,
			Message: fmt.Sprintf("bib %d is %s in section %s but has recorded times (start=%t, goal=%t)",
				k.bib, state.status, k.section, state.hasStart, state.hasGoal),
			Details: StatusWithTimeDetails{
				Section:  k.section,
				Bib:      k.bib,
				Status:   state.status,
				HasStart: state.hasStart,
				HasGoal:  state.hasGoal,
			},
			Key:         key(KindStatusWithTime, k.section, k.bib),
			Confirmable: true,
		})
	}
	return findings
}

// CheckManualMeasurements flags rows whose lane/type column reads "T"
// (manual timing) next to a bib. An operator should confirm the manual
// override was intended.
func CheckManualMeasurements(records []models.TimingRecord) []Finding {
	var findings []Finding
	seen := make(map[string]bool)
	for _, rec := range records {
		if rec.Lane != "T" {
			continue
		}
		fk := key(KindManualMeasurement, rec.File, rec.Bib)
		if seen[fk] {
			continue
		}
		seen[fk] = true
		findings = append(findings, Finding{
			Kind: KindManualMeasurement,
			Message: fmt.Sprintf("bib %d in %s was timed manually (lane column T)",
				rec.Bib, rec.File),
			Details: ManualMeasurementDetails{
				File:    rec.File,
				Section: rec.Section,
				Bib:     rec.Bib,
			},
			Key:         fk,
			Confirmable: true,
		})
	}
	return findings
}

// CheckMeasurementDeficiency flags PC/CO checkpoints where at least half of
// the timed bibs look wrong: PC bibs deviating one second or more from
// target, CO bibs scoring zero. That pattern usually means the checkpoint
// equipment, not the drivers.
func CheckMeasurementDeficiency(sections []models.Section,
	results map[models.ResultKey]*models.Result) []Finding {

	var findings []Finding
	for _, sec := range sections {
		secType := scoring.SectionType(sec.Name)
		if secType != models.SectionPC && secType != models.SectionCO {
			continue
		}

		timed, deviant := 0, 0
		for rk, res := range results {
			if rk.Section != sec.Name || res.Status != "" || res.PassageTime == nil {
				continue
			}
			timed++
			switch secType {
			case models.SectionPC:
				if res.Diff != nil && math.Abs(*res.Diff) >= deficiencyThreshold {
					deviant++
				}
			case models.SectionCO:
				if res.Point == 0 {
					deviant++
				}
			}
		}

		if timed == 0 || deviant*2 < timed {
			continue
		}
		findings = append(findings, Finding{
			Kind: KindMeasurementDeficiency,
			Message: fmt.Sprintf("section %s: %d of %d timed bibs deviate, checkpoint measurement is suspect",
				sec.Name, deviant, timed),
			Details: MeasurementDeficiencyDetails{
				Section: sec.Name,
				Timed:   timed,
				Deviant: deviant,
			},
			Key:         key(KindMeasurementDeficiency, sec.Name),
			Confirmable: true,
		})
	}
	return findings
}

// groupSections maps group number to section names in definition order.
// Group 0 means "ungrouped" and is excluded.
func groupSections(sections []models.Section) map[int][]string {
	groups := make(map[int][]string)
	for _, sec := range sections {
		if sec.Group != 0 {
			groups[sec.Group] = append(groups[sec.Group], sec.Name)
		}
	}
	return groups
}

func sortedGroups(groups map[int][]string) []int {
	keys := make([]int, 0, len(groups))
	for g := range groups {
		keys = append(keys, g)
	}
	sort.Ints(keys)
	return keys
}

func sortedGroupKeys(m map[int][]string) []int {
	keys := make([]int, 0, len(m))
	for g := range m {
		keys = append(keys, g)
	}
	sort.Ints(keys)
	return keys
}

func toSet(bibs []int) map[int]bool {
	set := make(map[int]bool, len(bibs))
	for _, bib := range bibs {
		set[bib] = true
	}
	return set
}
