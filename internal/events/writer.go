package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Writer appends run outcomes to the sqlite audit log. The log is
// append-only history beside the CSV gradebook; it never gates grading.
type Writer struct {
	DB  *sql.DB
	Now func() time.Time
}

type Payload map[string]any

func (w Writer) Append(ctx context.Context, runID, studentID, verdict string, payload Payload) error {
	now := w.Now
	if now == nil {
		now = time.Now
	}
	ts := now().UTC().Format(time.RFC3339)
	if payload == nil {
		payload = Payload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal run payload: %w", err)
	}
	_, err = w.DB.ExecContext(ctx, `INSERT INTO runs(id,ts,student_id,verdict,payload_json) VALUES (?,?,?,?,?)`,
		runID, ts, nullable(studentID), verdict, string(data))
	return err
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
