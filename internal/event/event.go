// Package event reads the submission instant from the triggering event's
// metadata payload.
package event

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type payload struct {
	PullRequest *struct {
		UpdatedAt string `json:"updated_at"`
		CreatedAt string `json:"created_at"`
	} `json:"pull_request"`
}

// SubmittedAt returns when the change set was last updated, converted into
// loc. A missing path, file, or field is the unknown-timestamp state and
// returns (nil, nil); a present but unreadable payload is an error.
func SubmittedAt(path string, loc *time.Location) (*time.Time, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read event payload: %w", err)
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("event payload %s: %w", path, err)
	}
	if p.PullRequest == nil {
		return nil, nil
	}
	stamp := p.PullRequest.UpdatedAt
	if stamp == "" {
		stamp = p.PullRequest.CreatedAt
	}
	if stamp == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return nil, fmt.Errorf("event timestamp %q: %w", stamp, err)
	}
	local := t.In(loc)
	return &local, nil
}
