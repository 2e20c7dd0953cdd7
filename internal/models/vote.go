package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Score is a session rating. Only the three named values are valid; anything
// else is rejected during JSON decoding, before business logic runs.
type Score int

const (
	ScoreBad  Score = -1
	ScoreOK   Score = 0
	ScoreGood Score = 1
)

// UnmarshalJSON rejects integers outside {-1, 0, 1}.
func (s *Score) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch Score(v) {
	case ScoreBad, ScoreOK, ScoreGood:
		*s = Score(v)
		return nil
	}
	return fmt.Errorf("invalid score %d: must be -1, 0 or 1", v)
}

// Vote is one user's rating of one session. At most one row per
// (user, session); re-voting overwrites score and timestamp.
type Vote struct {
	UserToken string    `json:"user_token,omitempty"`
	SessionID string    `json:"session_id"`
	Score     Score     `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Feedback is one user's free-text feedback on one session. At most one row
// per (user, session); resubmission overwrites.
type Feedback struct {
	UserToken string    `json:"user_token,omitempty"`
	SessionID string    `json:"session_id"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
