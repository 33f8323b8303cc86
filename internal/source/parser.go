// Package source discovers, parses and appends ledger journal files.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/noralyzer/noralyzer/internal/common"
	"github.com/noralyzer/noralyzer/internal/model"

	"github.com/shopspring/decimal"
)

const maxLineErrors = 20

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// LineError describes one rejected journal line.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// ParseResult holds the output of parsing a single journal file.
type ParseResult struct {
	File        DiscoveredFile
	Records     []Record
	ParseErrors int
	Skipped     int
	Errors      []LineError // first few rejected lines
	Err         error
}

// ParseFile reads a journal and returns its validated records. Records that
// apply to the same (type, id) are collapsed: the last line wins and takes
// the position of the first. A record written after a tombstone for its key
// starts a new slot, so a re-added record moves behind everything before it.
//
// Lines are routed by their top-level "type" field. Lines without one, or
// with a type this version does not know, are skipped. Lines that fail
// validation count as parse errors.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{File: df, Err: err}
	}
	defer func() { _ = f.Close() }()

	result := ParseResult{File: df}
	index := make(map[RecordKey]int)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		rt := extractTopLevelType(line)
		if rt == "" {
			result.Skipped++
			continue
		}

		rec, err := DecodeRecord(rt, line)
		if err != nil {
			result.ParseErrors++
			if len(result.Errors) < maxLineErrors {
				result.Errors = append(result.Errors, LineError{Line: lineNo, Err: err})
			}
			continue
		}
		rec.Line = lineNo

		key := rec.Key()
		if i, ok := index[key]; ok && !reAdded(result.Records[i], rec) {
			result.Records[i] = rec
			continue
		}
		index[key] = len(result.Records)
		result.Records = append(result.Records, rec)
	}

	if err := scanner.Err(); err != nil {
		return ParseResult{File: df, Err: err}
	}
	return result
}

// reAdded reports whether rec restores a record that prev deleted.
func reAdded(prev, rec Record) bool {
	return prev.Type == TypeDelete && rec.Type != TypeDelete
}

// DecodeRecord validates payload as a record of type rt.
func DecodeRecord(rt RecordType, payload []byte) (Record, error) {
	rec := Record{Type: rt, Payload: append(json.RawMessage(nil), payload...)}

	var err error
	switch rt {
	case TypeEntry:
		var raw RawEntry
		if err = json.Unmarshal(payload, &raw); err == nil {
			rec.Value, err = raw.toEntry()
		}
	case TypeCategory:
		var c model.Category
		if err = json.Unmarshal(payload, &c); err == nil {
			rec.Value, err = c, requireNamed(c.ID, c.Name)
		}
	case TypeBank:
		var b model.Bank
		if err = json.Unmarshal(payload, &b); err == nil {
			rec.Value, err = b, requireNamed(b.ID, b.Name)
		}
	case TypeCard:
		var c model.Card
		if err = json.Unmarshal(payload, &c); err == nil {
			rec.Value, err = c, requireNamed(c.ID, c.Name)
		}
	case TypePerson:
		var p model.Person
		if err = json.Unmarshal(payload, &p); err == nil {
			rec.Value, err = p, requireNamed(p.ID, p.Name)
		}
	case TypePlace:
		var p model.Place
		if err = json.Unmarshal(payload, &p); err == nil {
			rec.Value, err = p, requireNamed(p.ID, p.Name)
		}
	case TypeTag:
		var tg model.Tag
		if err = json.Unmarshal(payload, &tg); err == nil {
			rec.Value, err = tg, requireNamed(tg.ID, tg.Name)
		}
	case TypeBudget:
		var raw RawBudget
		if err = json.Unmarshal(payload, &raw); err == nil {
			rec.Value, err = raw.toBudget()
		}
	case TypeGoal:
		var raw RawGoal
		if err = json.Unmarshal(payload, &raw); err == nil {
			rec.Value, err = raw.toGoal()
		}
	case TypeDelete:
		var raw RawDelete
		if err = json.Unmarshal(payload, &raw); err == nil {
			rec.Value, err = raw, raw.validate()
		}
	default:
		return Record{}, fmt.Errorf("unknown record type %q", rt)
	}
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", rt, err)
	}

	rec.ID = idOf(rec.Value)
	return rec, nil
}

func idOf(v any) model.ID {
	switch x := v.(type) {
	case model.Entry:
		return x.ID
	case model.Category:
		return x.ID
	case model.Bank:
		return x.ID
	case model.Card:
		return x.ID
	case model.Person:
		return x.ID
	case model.Place:
		return x.ID
	case model.Tag:
		return x.ID
	case model.Budget:
		return x.ID
	case model.Goal:
		return x.ID
	case RawDelete:
		return x.ID
	}
	return ""
}

func requireNamed(id model.ID, name string) error {
	if id == "" {
		return fmt.Errorf("missing id")
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("missing name")
	}
	return nil
}

func (r RawEntry) toEntry() (model.Entry, error) {
	if r.ID == "" {
		return model.Entry{}, fmt.Errorf("missing id")
	}
	amount, err := nonNegative("amount", r.Amount)
	if err != nil {
		return model.Entry{}, err
	}
	kind := model.Kind(strings.ToLower(strings.TrimSpace(r.Kind)))
	if !kind.Valid() {
		return model.Entry{}, fmt.Errorf("%w: %q", common.ErrUnknownKind, r.Kind)
	}
	cur := model.Currency(strings.ToUpper(strings.TrimSpace(r.Currency)))
	if cur == "" {
		cur = "TRY"
	}
	if !cur.Valid() {
		return model.Entry{}, fmt.Errorf("%w: %q", common.ErrUnknownCurrency, r.Currency)
	}
	date, err := parseDate(r.Date)
	if err != nil {
		return model.Entry{}, err
	}
	if r.Time != "" && !clockPattern.MatchString(r.Time) {
		return model.Entry{}, fmt.Errorf("%w: time %q", common.ErrInvalidDate, r.Time)
	}

	return model.Entry{
		ID:          r.ID,
		Amount:      amount,
		Currency:    cur,
		Kind:        kind,
		Date:        date,
		Time:        r.Time,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		CardID:      r.CardID,
		BankID:      r.BankID,
		PersonID:    r.PersonID,
		PlaceID:     r.PlaceID,
		OwnerID:     r.OwnerID,
		FromBankID:  r.FromBankID,
		ToBankID:    r.ToBankID,
		TagIDs:      r.TagIDs,
	}, nil
}

func (r RawBudget) toBudget() (model.Budget, error) {
	if err := requireNamed(r.ID, r.Name); err != nil {
		return model.Budget{}, err
	}
	amount, err := nonNegative("amount", r.Amount)
	if err != nil {
		return model.Budget{}, err
	}
	start, err := optionalDate(r.StartDate)
	if err != nil {
		return model.Budget{}, err
	}
	end, err := optionalDate(r.EndDate)
	if err != nil {
		return model.Budget{}, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return model.Budget{}, fmt.Errorf("%w: end_date before start_date", common.ErrInvalidDate)
	}
	return model.Budget{
		ID:         r.ID,
		Name:       r.Name,
		Amount:     amount,
		Period:     r.Period,
		CategoryID: r.CategoryID,
		StartDate:  start,
		EndDate:    end,
	}, nil
}

func (r RawGoal) toGoal() (model.Goal, error) {
	if err := requireNamed(r.ID, r.Name); err != nil {
		return model.Goal{}, err
	}
	target, err := nonNegative("target_amount", r.TargetAmount)
	if err != nil {
		return model.Goal{}, err
	}
	deadline, err := optionalDate(r.Deadline)
	if err != nil {
		return model.Goal{}, err
	}
	return model.Goal{
		ID:            r.ID,
		Name:          r.Name,
		TargetAmount:  target,
		CurrentAmount: r.CurrentAmount,
		Deadline:      deadline,
		CategoryID:    r.CategoryID,
	}, nil
}

func (r RawDelete) validate() error {
	if !recordTypes[r.Target] || r.Target == TypeDelete {
		return fmt.Errorf("unknown delete target %q", r.Target)
	}
	if r.ID == "" {
		return fmt.Errorf("missing id")
	}
	return nil
}

func nonNegative(field string, d *decimal.Decimal) (decimal.Decimal, error) {
	if d == nil {
		return decimal.Zero, fmt.Errorf("%w: missing %s", common.ErrInvalidAmount, field)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative %s %s", common.ErrInvalidAmount, field, d.String())
	}
	return *d, nil
}

// parseDate accepts YYYY-MM-DD, or an RFC 3339 timestamp whose calendar
// date is used.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", common.ErrInvalidDate, s)
}

func optionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// typeKey is the byte sequence for a JSON key named "type" (with quotes).
var typeKey = []byte(`"type"`)

// extractTopLevelType finds the top-level "type" field in a journal line.
// Tracks brace depth and string boundaries so nested "type" keys are ignored.
func extractTopLevelType(line []byte) RecordType {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], typeKey) {
				val, isKey := classifyType(line, i+len(typeKey))
				if isKey {
					return val
				}
			}
			i = skipJSONString(line, i)
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
		default:
			i++
		}
	}
	return ""
}

// classifyType checks whether pos follows a JSON key (expects : then value).
// isKey=false means "type" appeared as a value, not a key.
func classifyType(line []byte, pos int) (val RecordType, isKey bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true
	}
	i++

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 20 {
		return "", true
	}
	v := RecordType(line[i : i+end])
	if recordTypes[v] {
		return v, true
	}
	return "", true
}

// skipJSONString advances past a JSON string starting at the opening quote.
//
//nolint:gosec // manual bounds checking throughout
func skipJSONString(line []byte, i int) int {
	i++
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}
