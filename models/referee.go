package models

import "time"

// RefereeLevel представляет уровень квалификации арбитра (ENUM в БД).
type RefereeLevel string

const (
	LevelAspirante      RefereeLevel = "aspirante"
	LevelPrimoLivello   RefereeLevel = "1_livello"
	LevelRegionale      RefereeLevel = "regionale"
	LevelNazionale      RefereeLevel = "nazionale"
	LevelInternazionale RefereeLevel = "internazionale"
)

// Referee представляет арбитра. ZoneID может быть nil для арбитров без зоны.
type Referee struct {
	ID           int          `json:"id" db:"id"`
	FirstName    string       `json:"first_name" db:"first_name"`
	LastName     string       `json:"last_name" db:"last_name"`
	Email        string       `json:"email" db:"email"`
	RefereeCode  *string      `json:"referee_code,omitempty" db:"referee_code"`
	Level        RefereeLevel `json:"level" db:"level"`
	ZoneID       *int         `json:"zone_id,omitempty" db:"zone_id"`
	Role         string       `json:"role" db:"role"` // referee | admin | national_admin | super_admin
	IsActive     bool         `json:"is_active" db:"is_active"`
	PasswordHash string       `json:"-" db:"password_hash"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`

	Zone *Zone `json:"zone,omitempty" db:"-"`
}

func (r *Referee) FullName() string {
	return r.FirstName + " " + r.LastName
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
