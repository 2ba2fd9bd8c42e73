package repo

import (
	"context"
	"database/sql"

	"gradeline/internal/domain"
)

// Repo reads the run audit log.
type Repo struct {
	DB *sql.DB
}

// LatestRuns returns up to n most recent runs, newest first, optionally
// filtered by participant.
func (r Repo) LatestRuns(ctx context.Context, n int, studentID string) ([]domain.Run, error) {
	query := `SELECT id, ts, student_id, verdict, payload_json FROM runs`
	var args []any
	if studentID != "" {
		query += ` WHERE student_id=?`
		args = append(args, studentID)
	}
	query += ` ORDER BY ts DESC, id DESC LIMIT ?`
	args = append(args, n)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Run
	for rows.Next() {
		var run domain.Run
		var student sql.NullString
		if err := rows.Scan(&run.ID, &run.TS, &student, &run.Verdict, &run.Payload); err != nil {
			return nil, err
		}
		if student.Valid {
			run.StudentID = student.String
		}
		res = append(res, run)
	}
	return res, rows.Err()
}
