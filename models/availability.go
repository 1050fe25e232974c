package models

import "time"

// Availability — заявленная готовность арбитра судить турнир.
// Это не назначение: уникально по паре (referee_id, tournament_id).
type Availability struct {
	ID           int       `json:"id" db:"id"`
	RefereeID    int       `json:"referee_id" db:"referee_id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	SubmittedAt  time.Time `json:"submitted_at" db:"submitted_at"`
	Notes        *string   `json:"notes,omitempty" db:"notes"`

	Referee    *Referee    `json:"referee,omitempty" db:"-"`
	Tournament *Tournament `json:"tournament,omitempty" db:"-"`
}
