package model

import "time"

// Submission is the latest answer to one question within a session.
// There is at most one per (SessionID, QuestionID): saving again replaces
// the previous answer.
//
// The `json:"..."` tags tell Go's encoding/json package how to serialize/deserialize
// this struct to/from JSON.
type Submission struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	QuestionID string    `json:"questionId"`
	Language   string    `json:"language"`
	Code       string    `json:"code"`
	Answer     string    `json:"answer"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
