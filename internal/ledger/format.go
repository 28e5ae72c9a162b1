package ledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ExportJSONL writes the retained chain, oldest first, one JSON object
// per line. The export carries the stored hashes, so VerifyFile can
// re-check it offline.
func (l *Ledger) ExportJSONL(w io.Writer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	bw := bufio.NewWriter(w)
	for _, e := range l.entries {
		line, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("ledger: marshal entry %s: %w", e.ID, err)
		}
		if _, err := bw.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("ledger: write entry: %w", err)
		}
	}
	return bw.Flush()
}

// VerifyFile reads an exported JSONL chain and validates it with the
// same anchor rule as the in-memory ledger: the first line's prev_hash
// is trusted, everything after it must chain.
func VerifyFile(path string) VerifyResult {
	f, err := os.Open(path)
	if err != nil {
		return VerifyResult{Error: fmt.Sprintf("open: %v", err)}
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return VerifyResult{
				Entries:    line,
				Error:      fmt.Sprintf("parse error: %v", err),
				ErrorIndex: line - 1,
			}
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return VerifyResult{Error: fmt.Sprintf("scan: %v", err)}
	}

	return verifyChain(entries)
}

// ReadFile loads an exported JSONL chain without verifying it.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open export: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("ledger: parse export: %w", err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ledger: read export: %w", err)
	}
	return entries, nil
}
