package models

import "time"

// ClauseAudience — целевая аудитория клаузулы.
type ClauseAudience string

const (
	AudienceClub          ClauseAudience = "club"
	AudienceReferee       ClauseAudience = "referee"
	AudienceInstitutional ClauseAudience = "institutional"
	AudienceAll           ClauseAudience = "all"
)

// Clause — повторно используемый текстовый блок (boilerplate), выбираемый
// администратором для подстановки в документы уведомления. Жизненный цикл
// с мягким удалением: DeletedAt != nil означает, что клаузула логически
// удалена, но исторические выборки продолжают на неё ссылаться.
type Clause struct {
	ID        int            `json:"id" db:"id"`
	Code      string         `json:"code" db:"code"`
	Category  string         `json:"category" db:"category"`
	Title     string         `json:"title" db:"title"`
	Content   string         `json:"content" db:"content"`
	AppliesTo ClauseAudience `json:"applies_to" db:"applies_to"`
	IsActive  bool           `json:"is_active" db:"is_active"`
	SortOrder int            `json:"sort_order" db:"sort_order"`
	DeletedAt *time.Time     `json:"deleted_at,omitempty" db:"deleted_at"`
}

func (c *Clause) IsDeleted() bool {
	return c.DeletedAt != nil
}

// ClauseSelection связывает уведомление с клаузулой под именованным
// кодом плейсхолдера. На один плейсхолдер — максимум одна клаузула.
type ClauseSelection struct {
	ID              int    `json:"id" db:"id"`
	NotificationID  int    `json:"notification_id" db:"notification_id"`
	ClauseID        int    `json:"clause_id" db:"clause_id"`
	PlaceholderCode string `json:"placeholder_code" db:"placeholder_code"`

	Clause *Clause `json:"clause,omitempty" db:"-"`
}
