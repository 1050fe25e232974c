package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusOpen      TournamentStatus = "open"
	StatusClosed    TournamentStatus = "closed"
	StatusAssigned  TournamentStatus = "assigned"
	StatusCompleted TournamentStatus = "completed"
	StatusCancelled TournamentStatus = "cancelled"
)

// IsTerminal reports whether no further scheduling activity happens for the status.
func (s TournamentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TournamentType — категория турнира, определяет национальную
// классификацию и минимальное количество арбитров.
type TournamentType struct {
	ID            int     `json:"id" db:"id"`
	Name          string  `json:"name" db:"name"`
	IsNational    bool    `json:"is_national" db:"is_national"`
	MinReferees   int     `json:"min_referees" db:"min_referees"`
	RequiredLevel *string `json:"required_level,omitempty" db:"required_level"`
}

// Tournament представляет турнир.
type Tournament struct {
	ID         int              `json:"id" db:"id"`
	Name       string           `json:"name" db:"name"`
	ClubID     *int             `json:"club_id,omitempty" db:"club_id"`
	TypeID     *int             `json:"tournament_type_id,omitempty" db:"tournament_type_id"`
	StartDate  time.Time        `json:"start_date" db:"start_date"`
	EndDate    time.Time        `json:"end_date" db:"end_date"`
	IsNational bool             `json:"is_national" db:"is_national"`
	Status     TournamentStatus `json:"status" db:"status"`
	Notes      *string          `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Club        *Club           `json:"club,omitempty" db:"-"`
	Type        *TournamentType `json:"tournament_type,omitempty" db:"-"`
	Zone        *Zone           `json:"zone,omitempty" db:"-"`
	Assignments []Assignment    `json:"assignments,omitempty" db:"-"`
}

// EffectiveNational — действующая классификация: флаг самого турнира
// или флаг его типа.
func (t *Tournament) EffectiveNational() bool {
	if t.IsNational {
		return true
	}
	return t.Type != nil && t.Type.IsNational
}

// ZoneID returns the zone the tournament belongs to through its club,
// or nil when the zone is unresolvable.
func (t *Tournament) ZoneID() *int {
	if t.Club != nil {
		return &t.Club.ZoneID
	}
	if t.Zone != nil {
		return &t.Zone.ID
	}
	return nil
}
