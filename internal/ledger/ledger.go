// Package ledger appends final scores to the flat CSV gradebook.
package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"gradeline/internal/domain"
)

var header = []string{"student_id", "lab", "final_score", "max_points", "submitted_at"}

// Ledger is write-only from the grader's perspective: one row per touched
// unit per run, never updated or deleted. The header is written once when
// the file is created.
type Ledger struct {
	Path string
}

// Append writes one row per entry, creating the file with a header if absent.
func (l Ledger) Append(entries []domain.LedgerEntry) error {
	_, statErr := os.Stat(l.Path)
	writeHeader := os.IsNotExist(statErr)
	if statErr != nil && !writeHeader {
		return fmt.Errorf("stat ledger: %w", statErr)
	}

	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write ledger header: %w", err)
		}
	}
	for _, e := range entries {
		row := []string{e.StudentID, e.Unit, strconv.Itoa(e.FinalScore), strconv.Itoa(e.MaxPoints), e.SubmittedAt}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush ledger: %w", err)
	}
	return nil
}

// Tail reads up to n most recent rows, newest last. Missing file means an
// empty ledger.
func (l Ledger) Tail(n int) ([]domain.LedgerEntry, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	rows = rows[1:]
	if n > 0 && len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	entries := make([]domain.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		final, _ := strconv.Atoi(row[2])
		max, _ := strconv.Atoi(row[3])
		entries = append(entries, domain.LedgerEntry{
			StudentID:   row[0],
			Unit:        row[1],
			FinalScore:  final,
			MaxPoints:   max,
			SubmittedAt: row[4],
		})
	}
	return entries, nil
}
