package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/federgolf/referee-system/models"
	"github.com/federgolf/referee-system/repositories"
)

// Каталог плейсхолдеров клаузул, поддерживаемых шаблонами документов.
// Для каждого кода в шаблоне может существовать условный блок
// ${BLOCCO_<code>} ... ${/BLOCCO_<code>}.
var ClausePlaceholders = []string{
	"CLAUSOLA_CLUB_SPESE",
	"CLAUSOLA_CLUB_LOGISTICA",
	"CLAUSOLA_CLUB_RESPONSABILITA",
	"CLAUSOLA_ARBITRO_RESPONSABILITA",
	"CLAUSOLA_ARBITRO_COMUNICAZIONI",
	"CLAUSOLA_ARBITRO_ALTRO",
	"CLAUSOLA_ISTITUZIONALE_RESPONSABILITA",
}

// ClauseService управляет справочником клаузул и разрешает выбранные
// клаузулы уведомления в тексты для подстановки в документы.
type ClauseService interface {
	Create(ctx context.Context, clause *models.Clause) error
	GetByID(ctx context.Context, id int) (*models.Clause, error)
	ListActive(ctx context.Context, audience *models.ClauseAudience) ([]models.Clause, error)
	Update(ctx context.Context, clause *models.Clause) error
	Delete(ctx context.Context, id int) error

	// ResolveClauses возвращает карту плейсхолдер -> текст клаузулы для
	// уведомления. Мягко удалённые клаузулы разрешаются по последнему
	// известному содержимому.
	ResolveClauses(ctx context.Context, notificationID int) (map[string]string, error)
}

type clauseService struct {
	clauseRepo repositories.ClauseRepository
}

func NewClauseService(clauseRepo repositories.ClauseRepository) ClauseService {
	return &clauseService{clauseRepo: clauseRepo}
}

func (s *clauseService) Create(ctx context.Context, clause *models.Clause) error {
	if clause.Code == "" || clause.Title == "" || clause.Content == "" {
		return fmt.Errorf("%w: code, title and content are required", ErrValidationFailed)
	}
	if !validAudience(clause.AppliesTo) {
		return fmt.Errorf("%w: unknown audience %q", ErrValidationFailed, clause.AppliesTo)
	}

	if err := s.clauseRepo.Create(ctx, clause); err != nil {
		return mapClauseError(err)
	}
	return nil
}

func (s *clauseService) GetByID(ctx context.Context, id int) (*models.Clause, error) {
	clause, err := s.clauseRepo.GetByID(ctx, id, false)
	if err != nil {
		return nil, mapClauseError(err)
	}
	return clause, nil
}

func (s *clauseService) ListActive(ctx context.Context, audience *models.ClauseAudience) ([]models.Clause, error) {
	if audience != nil && !validAudience(*audience) {
		return nil, fmt.Errorf("%w: unknown audience %q", ErrValidationFailed, *audience)
	}
	return s.clauseRepo.ListActive(ctx, audience)
}

func (s *clauseService) Update(ctx context.Context, clause *models.Clause) error {
	if clause.Code == "" || clause.Title == "" || clause.Content == "" {
		return fmt.Errorf("%w: code, title and content are required", ErrValidationFailed)
	}
	if !validAudience(clause.AppliesTo) {
		return fmt.Errorf("%w: unknown audience %q", ErrValidationFailed, clause.AppliesTo)
	}

	if err := s.clauseRepo.Update(ctx, clause); err != nil {
		return mapClauseError(err)
	}
	return nil
}

func (s *clauseService) Delete(ctx context.Context, id int) error {
	if err := s.clauseRepo.SoftDelete(ctx, id); err != nil {
		return mapClauseError(err)
	}
	return nil
}

func (s *clauseService) ResolveClauses(ctx context.Context, notificationID int) (map[string]string, error) {
	selections, err := s.clauseRepo.ListSelections(ctx, notificationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load clause selections: %w", err)
	}

	resolved := make(map[string]string, len(selections))
	for _, sel := range selections {
		if sel.Clause == nil {
			continue
		}
		resolved[sel.PlaceholderCode] = sel.Clause.Content
	}
	return resolved, nil
}

func validAudience(a models.ClauseAudience) bool {
	switch a {
	case models.AudienceClub, models.AudienceReferee, models.AudienceInstitutional, models.AudienceAll:
		return true
	}
	return false
}

func mapClauseError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrClauseNotFound):
		return ErrClauseNotFound
	case errors.Is(err, repositories.ErrClauseCodeConflict):
		return ErrClauseCodeConflict
	default:
		return err
	}
}
