package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func writeValidTables(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, dir, "entries_sample.csv",
		"No,DriverName,DriverAge,CoDriverName,CoDriverAge,CarName,CarYear,CarClass,Coef,AgeCoef\n"+
			"1,alice,45,bob,40,fiat,1968,A,1.2,1.1\n"+
			"7.0,carol,50,dan,48,lancia,1972,B,1.0,1.0\n"+
			",,,,,,,,,\n")
	writeFile(t, dir, "point_sample.csv",
		"Order,Point\n1,100\n2,80\n3,60\n")
	writeFile(t, dir, "section_sample.csv",
		"type,section,name,time,GROUP,DAY\n"+
			"PC,PC1,Hill,90,0,1\n"+
			"PC,PC2,Lake 1,120,1,1\n"+
			"PC,PC3,Lake 2,150,1,2\n"+
			"PCG,PCG1,Lake Combined,270,1,2\n"+
			"CO,CO1,Control,0,0,2\n")
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeValidTables(t, dir)

	l := New(dir)
	if err := l.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	if got, want := l.Bibs(), []int{1, 7}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Bibs()=%v, want %v", got, want)
	}
	e, ok := l.Entry(7)
	if !ok {
		t.Fatalf("Entry(7) not found")
	}
	if e.DriverName != "carol" || e.CarYear != 1972 || e.Coef != 1.0 {
		t.Fatalf("Entry(7)=%+v", e)
	}

	if got := l.PointFor(2); got != 80 {
		t.Fatalf("PointFor(2)=%d, want 80", got)
	}
	if got := l.PointFor(99); got != 0 {
		t.Fatalf("PointFor(99)=%d, want 0", got)
	}

	order := l.SectionOrder()
	want := []string{"PC1", "PC2", "PC3", "PCG1", "CO1"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("SectionOrder()=%v, want %v", order, want)
	}

	target, ok := l.TargetTime("PC2")
	if !ok || target != 120 {
		t.Fatalf("TargetTime(PC2)=%d,%v, want 120,true", target, ok)
	}

	if got, want := l.PCSectionsInGroup(1), []string{"PC2", "PC3"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("PCSectionsInGroup(1)=%v, want %v", got, want)
	}
	if got := l.SectionsByDay(2); !reflect.DeepEqual(got, []string{"PC3", "PCG1", "CO1"}) {
		t.Fatalf("SectionsByDay(2)=%v", got)
	}
	if !l.HasDayColumn() {
		t.Fatalf("HasDayColumn()=false, want true")
	}
	if got := l.MaxDay(); got != 2 {
		t.Fatalf("MaxDay()=%d, want 2", got)
	}
}

func TestLoadAllBOMHeader(t *testing.T) {
	dir := t.TempDir()
	writeValidTables(t, dir)
	writeFile(t, dir, "entries_sample.csv",
		"\uFEFFNo,DriverAge,CoDriverAge,CarYear,Coef,AgeCoef\n1,45,40,1968,1.0,1.0\n")

	l := New(dir)
	if err := l.LoadAll(); err != nil {
		t.Fatalf("LoadAll with BOM: %v", err)
	}
	if _, ok := l.Entry(1); !ok {
		t.Fatalf("Entry(1) not found after BOM header")
	}
}

func TestLoadAllMissingTable(t *testing.T) {
	dir := t.TempDir()
	writeValidTables(t, dir)
	if err := os.Remove(filepath.Join(dir, "point_sample.csv")); err != nil {
		t.Fatal(err)
	}

	l := New(dir)
	if err := l.LoadAll(); err == nil {
		t.Fatalf("LoadAll succeeded without point table")
	}
}

func TestLoadAllAmbiguousTable(t *testing.T) {
	dir := t.TempDir()
	writeValidTables(t, dir)
	writeFile(t, dir, "point_other.csv", "Order,Point\n1,100\n")

	l := New(dir)
	err := l.LoadAll()
	if err == nil {
		t.Fatalf("LoadAll succeeded with two point tables")
	}
}

func TestLoadAllMissingColumns(t *testing.T) {
	dir := t.TempDir()
	writeValidTables(t, dir)
	writeFile(t, dir, "section_sample.csv", "type,section,name\nPC,PC1,Hill\n")

	l := New(dir)
	err := l.LoadAll()
	if err == nil {
		t.Fatalf("LoadAll succeeded with incomplete section header")
	}
}

func TestLoadAllNonNumericTargetTime(t *testing.T) {
	dir := t.TempDir()
	writeValidTables(t, dir)
	writeFile(t, dir, "section_sample.csv",
		"type,section,name,time,GROUP\nPC,PC1,Hill,soon,0\n")

	l := New(dir)
	if err := l.LoadAll(); err == nil {
		t.Fatalf("LoadAll succeeded with non-numeric target time")
	}
}

func TestLoadAllDuplicateSectionName(t *testing.T) {
	dir := t.TempDir()
	writeValidTables(t, dir)
	writeFile(t, dir, "section_sample.csv",
		"type,section,name,time,GROUP\n"+
			"PC,PC1,Hill,90,0\n"+
			"PC,PC1,Hill again,95,0\n")

	l := New(dir)
	err := l.LoadAll()
	if err == nil {
		t.Fatalf("LoadAll succeeded with a duplicate section name")
	}
	if !strings.Contains(err.Error(), "PC1") {
		t.Fatalf("error %q does not name the section", err)
	}
}

func TestSectionsWithoutDayColumn(t *testing.T) {
	dir := t.TempDir()
	writeValidTables(t, dir)
	writeFile(t, dir, "section_sample.csv",
		"type,section,name,time,GROUP\nPC,PC1,Hill,90,0\n")

	l := New(dir)
	if err := l.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if l.HasDayColumn() {
		t.Fatalf("HasDayColumn()=true, want false")
	}
	if got := l.SectionsByDay(1); got != nil {
		t.Fatalf("SectionsByDay(1)=%v, want nil", got)
	}
	if got := l.MaxDay(); got != 0 {
		t.Fatalf("MaxDay()=%d, want 0", got)
	}
}
