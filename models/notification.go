package models

import "time"

// NotificationStatus — статусы уведомления турнира.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
)

// NotificationRecipients — нормализованная форма получателей: флаг клуба,
// список id арбитров, список id институциональных адресов.
type NotificationRecipients struct {
	Club          bool  `json:"club"`
	Referees      []int `json:"referees"`
	Institutional []int `json:"institutional"`
}

// NotificationDocuments — ссылки на сгенерированные артефакты (имена файлов
// внутри папки зоны).
type NotificationDocuments struct {
	Convocation string `json:"convocation,omitempty"`
	ClubLetter  string `json:"club_letter,omitempty"`
}

// NotificationMetadata — проверяемая структура с данными письма,
// заполняется администратором перед отправкой.
type NotificationMetadata struct {
	Version           int                    `json:"version"`
	Subject           string                 `json:"subject"`
	Message           string                 `json:"message"`
	AttachConvocation bool                   `json:"attach_convocation"`
	Recipients        NotificationRecipients `json:"recipients"`
}

// Validate returns the missing required field names. Empty result means the
// metadata is complete enough to send.
func (m *NotificationMetadata) Validate() []string {
	var missing []string
	if m == nil {
		return []string{"metadata"}
	}
	if m.Subject == "" {
		missing = append(missing, "subject")
	}
	if m.Message == "" {
		missing = append(missing, "message")
	}
	return missing
}

// Notification — уведомление турнира; не более одного на турнир
// (UNIQUE(tournament_id) в БД).
type Notification struct {
	ID           int                    `json:"id" db:"id"`
	TournamentID int                    `json:"tournament_id" db:"tournament_id"`
	Status       NotificationStatus     `json:"status" db:"status"`
	Recipients   NotificationRecipients `json:"recipients" db:"recipients"`
	Documents    NotificationDocuments  `json:"documents" db:"documents"`
	Metadata     *NotificationMetadata  `json:"metadata,omitempty" db:"metadata"`
	RefereeList  string                 `json:"referee_list" db:"referee_list"`
	SentAt       *time.Time             `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt    time.Time              `json:"created_at" db:"created_at"`

	Tournament *Tournament       `json:"tournament,omitempty" db:"-"`
	Selections []ClauseSelection `json:"clause_selections,omitempty" db:"-"`
}

// InstitutionalEmail — адрес из институционального справочника федерации
// (уффичи, комитеты), источник канала institutional.
type InstitutionalEmail struct {
	ID       int    `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email" db:"email"`
	Category string `json:"category" db:"category"`
	IsActive bool   `json:"is_active" db:"is_active"`
}
