// Package sample generates a small, self-consistent data set: a settings
// folder and a race folder that the rest of the tool can process without
// further editing. Used by the sample command and by tests.
package sample

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hal75-user/PC-System-Tool/pkg/logger"
)

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func entriesRows() [][]string {
	rows := [][]string{
		{"No", "DriverName", "DriverAge", "CoDriverName", "CoDriverAge", "CarName", "CarYear", "CarClass", "Coef", "AgeCoef"},
	}
	years := []string{"1965", "1968", "1971", "1959", "1972", "1966", "1969", "1963", "1970", "1967"}
	for i := 1; i <= 10; i++ {
		class := "A"
		if i > 6 {
			class = "B"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("driver%d", i), "45",
			fmt.Sprintf("codriver%d", i), "40",
			fmt.Sprintf("car%d", i), years[i-1],
			class, "1.0", "1.0",
		})
	}
	return rows
}

func pointRows() [][]string {
	rows := [][]string{{"Order", "Point"}}
	points := []string{"100", "80", "60", "50", "40", "30", "20", "15", "10", "5"}
	for i, p := range points {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), p})
	}
	return rows
}

func sectionRows() [][]string {
	return [][]string{
		{"type", "section", "name", "time", "GROUP", "DAY"},
		{"PC", "PC1", "Hillside Sprint", "90", "0", "1"},
		{"CO", "CO1", "Village Control", "0", "0", "1"},
		{"PC", "PC2", "Lakeshore Stage 1", "120", "1", "1"},
		{"PC", "PC3", "Lakeshore Stage 2", "150", "1", "1"},
		{"PCG", "PCG1", "Lakeshore Combined", "1950", "1", "1"},
		{"PC", "PC4", "Forest Sprint", "100", "0", "2"},
		{"CO", "CO2", "Summit Control", "0", "0", "2"},
	}
}

// raceFile lists the passage times for one section-event CSV in the format
// the timing parser reads: the lane column left of the time column and the
// bib number right of it.
type raceFile struct {
	name string
	rows [][]string
}

func raceFiles() []raceFile {
	header := []string{"Lane", "Time", "No"}
	return []raceFile{
		{"PC1START.csv", [][]string{header,
			{"1", "09:00:00.00", "1"}, {"1", "09:02:00.00", "2"}, {"2", "09:04:00.00", "3"},
			{"1", "09:06:00.00", "4"}, {"2", "09:08:00.00", "5"}, {"1", "09:10:00.00", "6"},
			{"2", "09:12:00.00", "7"}, {"1", "09:14:00.00", "8"}, {"2", "09:16:00.00", "9"},
			{"T", "09:18:00.00", "10"},
		}},
		{"PC1GOAL.csv", [][]string{header,
			{"1", "09:01:30.00", "1"}, {"1", "09:03:30.50", "2"}, {"2", "09:05:31.20", "3"},
			{"1", "09:07:29.10", "4"}, {"2", "09:09:32.00", "5"}, {"1", "09:11:28.40", "6"},
			{"2", "09:13:30.10", "7"}, {"1", "09:15:33.60", "8"}, {"2", "09:17:29.90", "9"},
			{"T", "09:19:30.90", "10"},
		}},
		{"CO1START.csv", [][]string{header,
			{"1", "10:00:00.00", "1"}, {"1", "10:01:00.00", "2"}, {"1", "10:02:00.00", "3"},
			{"1", "10:03:00.00", "4"}, {"1", "10:04:00.00", "5"}, {"1", "10:05:00.00", "6"},
			{"1", "10:06:00.00", "7"}, {"1", "10:07:00.00", "8"}, {"1", "10:08:00.00", "9"},
			{"1", "10:09:00.00", "10"},
		}},
		{"CO1GOAL.csv", [][]string{header,
			{"1", "10:00:30.00", "1"}, {"1", "10:01:45.00", "2"}, {"1", "10:03:10.00", "3"},
			{"1", "10:03:50.00", "4"}, {"1", "10:04:59.90", "5"}, {"1", "10:05:20.00", "6"},
			{"1", "10:06:40.00", "7"}, {"1", "10:07:15.00", "8"}, {"1", "10:08:55.00", "9"},
			{"1", "10:10:05.00", "10"},
		}},
		{"PC2START.csv", [][]string{header,
			{"1", "11:00:00.00", "1"}, {"1", "11:02:00.00", "2"}, {"2", "11:04:00.00", "3"},
			{"1", "11:06:00.00", "4"}, {"2", "11:08:00.00", "5"}, {"1", "11:10:00.00", "6"},
			{"2", "11:12:00.00", "7"}, {"1", "11:14:00.00", "8"}, {"2", "11:16:00.00", "9"},
			{"1", "11:18:00.00", "10"},
		}},
		{"PC2GOAL.csv", [][]string{header,
			{"1", "11:02:00.00", "1"}, {"1", "11:04:00.50", "2"}, {"2", "11:05:59.20", "3"},
			{"1", "11:08:01.30", "4"}, {"2", "11:09:58.60", "5"}, {"1", "11:12:00.20", "6"},
			{"2", "11:13:59.80", "7"}, {"1", "11:16:00.90", "8"}, {"2", "11:18:02.00", "9"},
			{"1", "11:19:59.50", "10"},
		}},
		{"PC3START.csv", [][]string{header,
			{"1", "11:30:00.00", "1"}, {"1", "11:32:00.00", "2"}, {"2", "11:34:00.00", "3"},
			{"1", "11:36:00.00", "4"}, {"2", "11:38:00.00", "5"}, {"1", "11:40:00.00", "6"},
			{"2", "11:42:00.00", "7"}, {"1", "11:44:00.00", "8"}, {"2", "11:46:00.00", "9"},
			{"1", "11:48:00.00", "10"},
		}},
		{"PC3GOAL.csv", [][]string{header,
			{"1", "11:32:30.30", "1"}, {"1", "11:34:29.60", "2"}, {"2", "11:36:31.50", "3"},
			{"1", "11:38:30.00", "4"}, {"2", "11:40:28.20", "5"}, {"1", "11:42:30.80", "6"},
			{"2", "11:44:29.90", "7"}, {"1", "11:46:32.10", "8"}, {"2", "11:48:30.40", "9"},
			{"1", "11:50:29.00", "10"},
		}},
		{"PC4START.csv", [][]string{header,
			{"1", "13:00:00.00", "1"}, {"1", "13:02:00.00", "2"}, {"2", "13:04:00.00", "3"},
			{"1", "13:06:00.00", "4"}, {"2", "13:08:00.00", "5"}, {"1", "13:10:00.00", "6"},
			{"2", "13:12:00.00", "7"}, {"1", "13:14:00.00", "8"}, {"2", "13:16:00.00", "9"},
			{"1", "13:18:00.00", "10"},
		}},
		{"PC4GOAL.csv", [][]string{header,
			{"1", "13:01:40.20", "1"}, {"1", "13:03:39.50", "2"}, {"2", "13:05:41.30", "3"},
			{"1", "13:07:40.00", "4"}, {"2", "13:09:38.70", "5"}, {"1", "13:11:40.60", "6"},
			{"2", "13:13:39.90", "7"}, {"1", "13:15:41.00", "8"}, {"2", "13:17:40.30", "9"},
			{"1", "13:19:39.20", "10"},
		}},
		{"CO2START.csv", [][]string{header,
			{"1", "14:00:00.00", "1"}, {"1", "14:01:00.00", "2"}, {"1", "14:02:00.00", "3"},
			{"1", "14:03:00.00", "4"}, {"1", "14:04:00.00", "5"}, {"1", "14:05:00.00", "6"},
			{"1", "14:06:00.00", "7"}, {"1", "14:07:00.00", "8"}, {"1", "14:08:00.00", "9"},
			{"1", "14:09:00.00", "10"},
		}},
		{"CO2GOAL.csv", [][]string{header,
			{"1", "14:00:20.00", "1"}, {"1", "14:01:35.00", "2"}, {"1", "14:02:58.00", "3"},
			{"1", "14:04:02.00", "4"}, {"1", "14:04:45.00", "5"}, {"1", "14:05:59.00", "6"},
			{"1", "14:06:30.00", "7"}, {"1", "14:08:10.00", "8"}, {"1", "14:08:50.00", "9"},
			{"1", "14:09:25.00", "10"},
		}},
	}
}

// GenerateSettings writes the three settings tables into the given folder,
// creating it if needed.
func GenerateSettings(folder string) error {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("create settings folder: %w", err)
	}
	files := map[string][][]string{
		"entries_sample.csv": entriesRows(),
		"point_sample.csv":   pointRows(),
		"section_sample.csv": sectionRows(),
	}
	for name, rows := range files {
		if err := writeCSV(filepath.Join(folder, name), rows); err != nil {
			return err
		}
	}
	logger.Info("generated sample settings in %s", folder)
	return nil
}

// GenerateRace writes the section-event timing CSVs into the given folder,
// creating it if needed. The data covers every section the sample settings
// define, with one manual measurement on the first stage.
func GenerateRace(folder string) error {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("create race folder: %w", err)
	}
	for _, rf := range raceFiles() {
		if err := writeCSV(filepath.Join(folder, rf.name), rf.rows); err != nil {
			return err
		}
	}
	logger.Info("generated sample race data in %s", folder)
	return nil
}

// Generate writes both the settings and race folders.
func Generate(settingsFolder, raceFolder string) error {
	if err := GenerateSettings(settingsFolder); err != nil {
		return err
	}
	return GenerateRace(raceFolder)
}
