package models

import (
	"sort"
	"time"
)

// AssignmentRole — канонические роли в составе судейского комитета.
type AssignmentRole string

const (
	RoleDirector  AssignmentRole = "Direttore di Torneo"
	RoleReferee   AssignmentRole = "Arbitro"
	RoleObserver  AssignmentRole = "Osservatore"
	RoleAssistant AssignmentRole = "Assistente"
)

// Assignment — подтверждённое назначение арбитра на турнир.
// Уникально по паре (referee_id, tournament_id).
type Assignment struct {
	ID           int            `json:"id" db:"id"`
	TournamentID int            `json:"tournament_id" db:"tournament_id"`
	RefereeID    int            `json:"referee_id" db:"referee_id"`
	Role         AssignmentRole `json:"role" db:"role"`
	AssignedBy   *int           `json:"assigned_by,omitempty" db:"assigned_by"`
	AssignedAt   time.Time      `json:"assigned_at" db:"assigned_at"`

	Referee    *Referee    `json:"referee,omitempty" db:"-"`
	Tournament *Tournament `json:"tournament,omitempty" db:"-"`
}

// roleRank определяет порядок ролей в составе комитета: директор,
// затем арбитры, затем наблюдатели.
func roleRank(role AssignmentRole) int {
	switch role {
	case RoleDirector:
		return 0
	case RoleReferee:
		return 1
	case RoleAssistant:
		return 2
	case RoleObserver:
		return 3
	default:
		return 4
	}
}

// SortAssignmentsByRole sorts the roster in committee order (stable, so
// referees with the same role keep their assignment order).
func SortAssignmentsByRole(assignments []Assignment) []Assignment {
	sorted := make([]Assignment, len(assignments))
	copy(sorted, assignments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return roleRank(sorted[i].Role) < roleRank(sorted[j].Role)
	})
	return sorted
}
