package models

import "fmt"

// Zone представляет Sezione Zonale Regole (SZR) — административную зону федерации.
type Zone struct {
	ID         int     `json:"id" db:"id"`
	Code       string  `json:"code" db:"code"`
	Name       string  `json:"name" db:"name"`
	Email      *string `json:"email,omitempty" db:"email"`
	FolderCode *string `json:"folder_code,omitempty" db:"folder_code"`
	IsActive   bool    `json:"is_active" db:"is_active"`
}

// FolderCodeOrDefault returns the configured folder code for the zone,
// falling back to the SZR{id} pattern when no explicit mapping exists.
func (z *Zone) FolderCodeOrDefault() string {
	if z.FolderCode != nil && *z.FolderCode != "" {
		return *z.FolderCode
	}
	return fmt.Sprintf("SZR%d", z.ID)
}
