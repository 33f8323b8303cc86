package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultJournal is the file new records are appended to.
const DefaultJournal = "ledger.jsonl"

// AppendRecord validates v as a record of type rt and appends it as one line
// to the journal at path. The line is written with a single write call.
func AppendRecord(path string, rt RecordType, v any) (Record, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("encoding %s: %w", rt, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Record{}, fmt.Errorf("encoding %s: %w", rt, err)
	}
	typ, _ := json.Marshal(rt)
	fields["type"] = typ

	line, err := json.Marshal(fields)
	if err != nil {
		return Record{}, fmt.Errorf("encoding %s: %w", rt, err)
	}

	rec, err := DecodeRecord(rt, line)
	if err != nil {
		return Record{}, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return Record{}, fmt.Errorf("creating data dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return Record{}, fmt.Errorf("opening journal: %w", err)
	}
	defer func() { _ = f.Close() }()

	line = append(line, '\n')
	if endsMidLine(f) {
		line = append([]byte{'\n'}, line...)
	}
	if _, err := f.Write(line); err != nil {
		return Record{}, fmt.Errorf("appending to %s: %w", path, err)
	}
	return rec, nil
}

// endsMidLine reports whether a non-empty journal lacks its final newline,
// as hand-edited files often do.
func endsMidLine(f *os.File) bool {
	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return false
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false
	}
	return last[0] != '\n'
}
