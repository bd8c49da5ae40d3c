package state

import (
	"path/filepath"
	"testing"

	"github.com/hal75-user/PC-System-Tool/pkg/models"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state", "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSectionStatusRoundTrip(t *testing.T) {
	s := openStore(t)

	if err := s.SetSectionStatus(5, "PC1", models.StatusRetired); err != nil {
		t.Fatalf("SetSectionStatus: %v", err)
	}
	if err := s.SetSectionStatus(7, "CO2", models.StatusNotClassified); err != nil {
		t.Fatalf("SetSectionStatus: %v", err)
	}

	statuses, err := s.SectionStatuses()
	if err != nil {
		t.Fatalf("SectionStatuses: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("statuses=%v, want 2 entries", statuses)
	}
	if got := statuses[models.ResultKey{Bib: 5, Section: "PC1"}]; got != models.StatusRetired {
		t.Fatalf("status=%q, want RIT", got)
	}

	if err := s.ClearSectionStatus(5, "PC1"); err != nil {
		t.Fatalf("ClearSectionStatus: %v", err)
	}
	statuses, err = s.SectionStatuses()
	if err != nil {
		t.Fatalf("SectionStatuses: %v", err)
	}
	if _, ok := statuses[models.ResultKey{Bib: 5, Section: "PC1"}]; ok {
		t.Fatalf("cleared status still present: %v", statuses)
	}
}

func TestFinalStatusRoundTrip(t *testing.T) {
	s := openStore(t)

	if err := s.SetFinalStatus(3, models.StatusBlank); err != nil {
		t.Fatalf("SetFinalStatus: %v", err)
	}
	statuses, err := s.FinalStatuses()
	if err != nil {
		t.Fatalf("FinalStatuses: %v", err)
	}
	if got := statuses[3]; got != models.StatusBlank {
		t.Fatalf("status=%q, want BLNK", got)
	}

	if err := s.ClearFinalStatus(3); err != nil {
		t.Fatalf("ClearFinalStatus: %v", err)
	}
	statuses, err = s.FinalStatuses()
	if err != nil {
		t.Fatalf("FinalStatuses: %v", err)
	}
	if len(statuses) != 0 {
		t.Fatalf("statuses=%v, want empty", statuses)
	}
}

func TestConfirmations(t *testing.T) {
	s := openStore(t)

	if err := s.ConfirmFinding("section_order:1:PC2"); err != nil {
		t.Fatalf("ConfirmFinding: %v", err)
	}
	keys, err := s.ConfirmedKeys()
	if err != nil {
		t.Fatalf("ConfirmedKeys: %v", err)
	}
	if !keys["section_order:1:PC2"] {
		t.Fatalf("keys=%v, want confirmed key present", keys)
	}

	if err := s.UnconfirmFinding("section_order:1:PC2"); err != nil {
		t.Fatalf("UnconfirmFinding: %v", err)
	}
	keys, err = s.ConfirmedKeys()
	if err != nil {
		t.Fatalf("ConfirmedKeys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("keys=%v, want empty", keys)
	}
}

func TestPersistenceAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SetFinalStatus(9, models.StatusRetired); err != nil {
		t.Fatalf("SetFinalStatus: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	statuses, err := s.FinalStatuses()
	if err != nil {
		t.Fatalf("FinalStatuses: %v", err)
	}
	if got := statuses[9]; got != models.StatusRetired {
		t.Fatalf("status after reopen=%q, want RIT", got)
	}
}
