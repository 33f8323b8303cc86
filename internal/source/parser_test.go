package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/noralyzer/noralyzer/internal/common"
	"github.com/noralyzer/noralyzer/internal/model"
)

// writeJournal creates a temp journal file and returns a DiscoveredFile for it.
func writeJournal(t *testing.T, lines ...string) DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return DiscoveredFile{Path: path, RelPath: "ledger.jsonl"}
}

func TestParseFile_RoutesByType(t *testing.T) {
	df := writeJournal(t,
		`{"type":"category","id":1,"name":"Food","icon":"🍔"}`,
		`{"type":"entry","id":"e1","amount":"100.50","currency":"try","kind":"expense","date":"2024-01-15","category_id":1}`,
		`{"type":"budget","id":1,"name":"Food","amount":500,"category_id":1,"start_date":"2024-01-01"}`,
		`{"type":"goal","id":"g1","name":"Car","target_amount":1000,"current_amount":100}`,
		`{"type":"person","id":7,"name":"Ayşe"}`,
	)

	result := ParseFile(df)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.ParseErrors != 0 {
		t.Fatalf("ParseErrors = %d, errors %v", result.ParseErrors, result.Errors)
	}
	if len(result.Records) != 5 {
		t.Fatalf("Records = %d, want 5", len(result.Records))
	}

	e, ok := result.Records[1].Value.(model.Entry)
	if !ok {
		t.Fatalf("record 1 is %T, want model.Entry", result.Records[1].Value)
	}
	if e.Amount.String() != "100.5" {
		t.Errorf("Amount = %s, want 100.5", e.Amount)
	}
	if e.Currency != "TRY" {
		t.Errorf("Currency = %q, want TRY", e.Currency)
	}
	if e.CategoryID != "1" {
		t.Errorf("CategoryID = %q, want 1 (numeric ids become strings)", e.CategoryID)
	}

	b := result.Records[2].Value.(model.Budget)
	if b.StartDate == nil || b.EndDate != nil {
		t.Errorf("budget dates = %v / %v, want start only", b.StartDate, b.EndDate)
	}
}

func TestParseFile_LastWinsAtFirstPosition(t *testing.T) {
	df := writeJournal(t,
		`{"type":"entry","id":"a","amount":1,"kind":"expense","date":"2024-01-01"}`,
		`{"type":"entry","id":"b","amount":2,"kind":"expense","date":"2024-01-02"}`,
		`{"type":"entry","id":"a","amount":9,"kind":"income","date":"2024-01-03"}`,
	)

	result := ParseFile(df)
	if len(result.Records) != 2 {
		t.Fatalf("Records = %d, want 2 (dedup)", len(result.Records))
	}
	first := result.Records[0].Value.(model.Entry)
	if first.ID != "a" || first.Amount.IntPart() != 9 || first.Kind != model.KindIncome {
		t.Errorf("first = %+v, want a/9/income", first)
	}
	if result.Records[0].Line != 3 {
		t.Errorf("Line = %d, want 3", result.Records[0].Line)
	}
}

func TestParseFile_DeleteSharesKey(t *testing.T) {
	df := writeJournal(t,
		`{"type":"entry","id":"a","amount":1,"kind":"expense","date":"2024-01-01"}`,
		`{"type":"delete","target":"entry","id":"a"}`,
	)

	result := ParseFile(df)
	if len(result.Records) != 1 {
		t.Fatalf("Records = %d, want 1", len(result.Records))
	}
	if result.Records[0].Type != TypeDelete {
		t.Errorf("Type = %q, want delete", result.Records[0].Type)
	}
}

func TestParseFile_ReAddAfterDeleteTakesNewSlot(t *testing.T) {
	df := writeJournal(t,
		`{"type":"entry","id":"x","amount":1,"kind":"expense","date":"2024-01-01"}`,
		`{"type":"entry","id":"y","amount":2,"kind":"expense","date":"2024-01-02"}`,
		`{"type":"delete","target":"entry","id":"x"}`,
		`{"type":"entry","id":"x","amount":3,"kind":"expense","date":"2024-01-03"}`,
		`{"type":"entry","id":"x","amount":4,"kind":"expense","date":"2024-01-03"}`,
	)

	result := ParseFile(df)
	if len(result.Records) != 3 {
		t.Fatalf("Records = %d, want 3", len(result.Records))
	}
	if result.Records[0].Type != TypeDelete {
		t.Errorf("slot 0 = %q, want the tombstone", result.Records[0].Type)
	}
	last := result.Records[2].Value.(model.Entry)
	if last.ID != "x" || last.Amount.IntPart() != 4 {
		t.Errorf("slot 2 = %+v, want x/4", last)
	}
}

func TestParseFile_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"negative amount", `{"type":"entry","id":"x","amount":-5,"kind":"expense","date":"2024-01-01"}`, common.ErrInvalidAmount},
		{"missing amount", `{"type":"entry","id":"x","kind":"expense","date":"2024-01-01"}`, common.ErrInvalidAmount},
		{"unknown kind", `{"type":"entry","id":"x","amount":5,"kind":"gift","date":"2024-01-01"}`, common.ErrUnknownKind},
		{"unknown currency", `{"type":"entry","id":"x","amount":5,"kind":"income","currency":"XYZ","date":"2024-01-01"}`, common.ErrUnknownCurrency},
		{"bad date", `{"type":"entry","id":"x","amount":5,"kind":"income","date":"15/01/2024"}`, common.ErrInvalidDate},
		{"bad time", `{"type":"entry","id":"x","amount":5,"kind":"income","date":"2024-01-01","time":"25:00"}`, common.ErrInvalidDate},
		{"budget end before start", `{"type":"budget","id":1,"name":"b","amount":5,"start_date":"2024-02-01","end_date":"2024-01-01"}`, common.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseFile(writeJournal(t, tt.line))
			if result.ParseErrors != 1 {
				t.Fatalf("ParseErrors = %d, want 1", result.ParseErrors)
			}
			if !errors.Is(result.Errors[0].Err, tt.want) {
				t.Errorf("error = %v, want %v", result.Errors[0].Err, tt.want)
			}
		})
	}
}

func TestParseFile_SkipsUnknownAndBlank(t *testing.T) {
	df := writeJournal(t,
		``,
		`# comment`,
		`{"type":"snapshot","id":1}`,
		`{"kind":"expense"}`,
		`{"type":"tag","id":1,"name":"trip","meta":{"type":"nested"}}`,
	)

	result := ParseFile(df)
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", result.Skipped)
	}
	if len(result.Records) != 1 || result.Records[0].Type != TypeTag {
		t.Errorf("Records = %+v, want one tag", result.Records)
	}
}

func TestExtractTopLevelType(t *testing.T) {
	tests := []struct {
		line string
		want RecordType
	}{
		{`{"type":"entry","id":1}`, TypeEntry},
		{`{"id":1, "type" : "goal"}`, TypeGoal},
		{`{"meta":{"type":"entry"},"id":1}`, ""},
		{`{"note":"type","type":"bank"}`, TypeBank},
		{`{"type":42}`, ""},
	}
	for _, tt := range tests {
		if got := extractTopLevelType([]byte(tt.line)); got != tt.want {
			t.Errorf("extractTopLevelType(%s) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestScanDir_OrdersByRelativePath(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jsonl", "a.jsonl", "2024/c.jsonl", ".hidden/d.jsonl", "notes.txt"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, f := range files {
		got = append(got, f.RelPath)
	}
	want := "2024/c.jsonl,a.jsonl,b.jsonl"
	if strings.Join(got, ",") != want {
		t.Errorf("files = %v, want %s", got, want)
	}
}

func TestAppendRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", DefaultJournal)

	raw := RawEntry{ID: "n1", Kind: "income", Date: "2024-03-01"}
	if _, err := AppendRecord(path, TypeEntry, raw); err == nil {
		t.Fatal("AppendRecord accepted an entry without amount")
	}

	amount := mustDecimal(t, "42.10")
	raw.Amount = &amount
	rec, err := AppendRecord(path, TypeEntry, raw)
	if err != nil {
		t.Fatalf("AppendRecord: %v", err)
	}
	if rec.ID != "n1" {
		t.Errorf("ID = %q", rec.ID)
	}

	result := ParseFile(DiscoveredFile{Path: path})
	if len(result.Records) != 1 || result.ParseErrors != 0 {
		t.Fatalf("reparsed %d records, %d errors", len(result.Records), result.ParseErrors)
	}
}

func TestAppendRecord_TerminatesDanglingLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultJournal)
	first := `{"type":"entry","id":"a","amount":1,"kind":"income","date":"2024-01-01"}`
	if err := os.WriteFile(path, []byte(first), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := AppendRecord(path, TypeDelete, RawDelete{Target: TypeEntry, ID: "a"}); err != nil {
		t.Fatalf("AppendRecord: %v", err)
	}

	result := ParseFile(DiscoveredFile{Path: path})
	if result.ParseErrors != 0 || len(result.Records) != 1 || result.Records[0].Type != TypeDelete {
		t.Fatalf("records = %+v, errors %d", result.Records, result.ParseErrors)
	}
}
