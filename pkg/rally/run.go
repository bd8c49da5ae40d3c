// Package rally ties the processing stages together: settings, timing,
// operator overrides, scoring and validation make up one batch run.
package rally

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hal75-user/PC-System-Tool/pkg/config"
	"github.com/hal75-user/PC-System-Tool/pkg/logger"
	"github.com/hal75-user/PC-System-Tool/pkg/metrics"
	"github.com/hal75-user/PC-System-Tool/pkg/models"
	"github.com/hal75-user/PC-System-Tool/pkg/scoring"
	"github.com/hal75-user/PC-System-Tool/pkg/settings"
	"github.com/hal75-user/PC-System-Tool/pkg/state"
	"github.com/hal75-user/PC-System-Tool/pkg/timing"
	"github.com/hal75-user/PC-System-Tool/pkg/validate"
)

// RunResult carries everything a caller needs after one batch pass. The
// engine holds the calculated grid, findings are confirmation-stamped.
type RunResult struct {
	RunID    string
	Tables   *settings.Loader
	Race     *timing.Parser
	Engine   *scoring.Engine
	Findings []validate.Finding
	Files    int
	Duration time.Duration
}

// Run executes one full batch pass: load settings, parse the race folder,
// stamp status overrides from the store, calculate the grid and validate
// in two passes. store may be nil, in which case no overrides or
// confirmations apply.
func Run(cfg config.Config, store *state.Store) (*RunResult, error) {
	runID := uuid.New().String()
	started := time.Now()
	logger.Info("Run %s: race=%s settings=%s", runID, cfg.RaceFolder, cfg.SettingsFolder)

	tables := settings.New(cfg.SettingsFolder)
	if err := tables.LoadAll(); err != nil {
		metrics.RecordRun(time.Since(started), 0, 0, 0, true)
		return nil, fmt.Errorf("load settings: %w", err)
	}

	race := timing.New(cfg.RaceFolder)
	files, err := race.ParseAll()
	if err != nil {
		metrics.RecordRun(time.Since(started), 0, 0, 0, true)
		return nil, fmt.Errorf("parse race data: %w", err)
	}

	var (
		sectionStatuses map[models.ResultKey]string
		finalStatuses   map[int]string
		confirmed       map[string]bool
	)
	if store != nil {
		if sectionStatuses, err = store.SectionStatuses(); err != nil {
			return nil, fmt.Errorf("load section statuses: %w", err)
		}
		if finalStatuses, err = store.FinalStatuses(); err != nil {
			return nil, fmt.Errorf("load final statuses: %w", err)
		}
		if confirmed, err = store.ConfirmedKeys(); err != nil {
			return nil, fmt.Errorf("load confirmed findings: %w", err)
		}
	}

	// The validator reads overrides off the raw records, so stamp them
	// before the first pass.
	records := race.Records()
	for i := range records {
		key := models.ResultKey{Bib: records[i].Bib, Section: records[i].Section}
		if st, ok := sectionStatuses[key]; ok {
			records[i].Status = st
		}
	}

	findings := validate.All(cfg.RaceFolder, records, tables.Sections(), nil)

	engine := scoring.New(tables, race, cfg.COBonus)
	engine.SetSectionStatuses(sectionStatuses)
	engine.SetFinalStatuses(finalStatuses)
	engine.CalculateAll()

	findings = append(findings,
		validate.CheckMeasurementDeficiency(tables.Sections(), engine.Results())...)
	validate.ApplyConfirmations(findings, confirmed)

	duration := time.Since(started)
	metrics.RecordRun(duration, files, len(records), len(engine.Results()), false)
	recordFindingMetrics(findings)

	logger.Info("Run %s: %d files, %d records, %d findings in %s",
		runID, files, len(records), len(findings), duration.Round(time.Millisecond))

	return &RunResult{
		RunID:    runID,
		Tables:   tables,
		Race:     race,
		Engine:   engine,
		Findings: findings,
		Files:    files,
		Duration: duration,
	}, nil
}

func recordFindingMetrics(findings []validate.Finding) {
	byKind := make(map[string]int)
	confirmed, unconfirmed := 0, 0
	for _, f := range findings {
		byKind[f.Kind]++
		if f.Confirmed {
			confirmed++
		} else {
			unconfirmed++
		}
	}
	metrics.RecordFindings(byKind, confirmed, unconfirmed)
}
