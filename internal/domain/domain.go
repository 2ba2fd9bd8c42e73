package domain

type Unit struct {
	Name      string `json:"name"`
	Deadline  string `json:"deadline"`
	Suite     string `json:"suite"`
	MaxPoints int    `json:"max_points"`
}

type Score struct {
	Earned int `json:"earned"`
	Max    int `json:"max"`
}

type LedgerEntry struct {
	StudentID   string `json:"student_id"`
	Unit        string `json:"lab"`
	FinalScore  int    `json:"final_score"`
	MaxPoints   int    `json:"max_points"`
	SubmittedAt string `json:"submitted_at,omitempty" format:"date-time"`
}

// Classification is the accepted outcome of change-set classification:
// exactly one valid participant plus the sorted graded units they touched.
type Classification struct {
	StudentID string   `json:"student_id"`
	Units     []string `json:"units"`
}

type RunReport struct {
	RunID       string   `json:"run_id"`
	StudentID   string   `json:"student_id"`
	Units       []string `json:"units"`
	Earned      int      `json:"earned"`
	MaxPoints   int      `json:"max_points"`
	FinalScore  int      `json:"final_score"`
	SubmittedAt string   `json:"submitted_at,omitempty" format:"date-time"`
	Messages    []string `json:"messages"`
}

type Run struct {
	ID        string `json:"id"`
	TS        string `json:"ts" format:"date-time"`
	StudentID string `json:"student_id,omitempty"`
	Verdict   string `json:"verdict"`
	Payload   string `json:"payload_json"`
}
