// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Session is one candidate's interview sitting. Submissions belong to a
// session; the session ID is also the subject of the signed token that
// grants access to them.
type Session struct {
	ID        string    `json:"sessionId"`
	StartTime time.Time `json:"startTime"`
	UpdatedAt time.Time `json:"updatedAt"`
}
