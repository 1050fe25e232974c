package models

// Conflict — две пересекающиеся по датам назначения одного арбитра.
type Conflict struct {
	Referee     *Referee    `json:"referee"`
	Assignment1 *Assignment `json:"assignment1"`
	Assignment2 *Assignment `json:"assignment2"`
	Severity    string      `json:"severity"` // high | medium | low
}

// ValidationSummary — агрегированный отчёт по проблемам расписания
// для панели администратора.
type ValidationSummary struct {
	Conflicts           int `json:"conflicts"`
	MissingRequirements int `json:"missing_requirements"`
	Overassigned        int `json:"overassigned"`
	Underassigned       int `json:"underassigned"`
	TotalIssues         int `json:"total_issues"`
}

// RecipientEntry — один канал рассылки с адресом и относящимся к нему
// подмножеством заявок.
type RecipientEntry struct {
	Email          string         `json:"email"`
	Availabilities []Availability `json:"availabilities"`
}

// RecipientMap — разбиение заявок арбитра на каналы уведомлений:
// зона (только зональные), национальный комитет (только национальные),
// сам арбитр (все заявки без разбиения).
type RecipientMap struct {
	Zone     *RecipientEntry `json:"zone,omitempty"`
	National *RecipientEntry `json:"national,omitempty"`
	Referee  RecipientEntry  `json:"referee"`
}
