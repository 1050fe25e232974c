package models

// Club представляет гольф-клуб (circolo), организующий турниры.
type Club struct {
	ID       int     `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Email    *string `json:"email,omitempty" db:"email"`
	ZoneID   int     `json:"zone_id" db:"zone_id"`
	IsActive bool    `json:"is_active" db:"is_active"`

	Zone *Zone `json:"zone,omitempty" db:"-"`
}
