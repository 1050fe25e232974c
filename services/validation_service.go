package services

import (
	"context"
	"fmt"
	"time"

	"github.com/federgolf/referee-system/models"
	"github.com/federgolf/referee-system/repositories"
)

// ValidationService выявляет проблемы в расписании назначений: конфликты дат,
// недоукомплектованные турниры, перегруженных и незадействованных арбитров.
// Только чтение, без побочных эффектов.
type ValidationService interface {
	DetectDateConflicts(ctx context.Context, zoneID *int) ([]models.Conflict, error)
	GetValidationSummary(ctx context.Context, zoneID *int) (*models.ValidationSummary, error)
}

type validationService struct {
	assignmentRepo    repositories.AssignmentRepository
	tournamentRepo    repositories.TournamentRepository
	refereeRepo       repositories.RefereeRepository
	overloadThreshold int
}

func NewValidationService(
	assignmentRepo repositories.AssignmentRepository,
	tournamentRepo repositories.TournamentRepository,
	refereeRepo repositories.RefereeRepository,
	overloadThreshold int,
) ValidationService {
	if overloadThreshold <= 0 {
		overloadThreshold = 10
	}
	return &validationService{
		assignmentRepo:    assignmentRepo,
		tournamentRepo:    tournamentRepo,
		refereeRepo:       refereeRepo,
		overloadThreshold: overloadThreshold,
	}
}

// DetectDateConflicts находит арбитров, назначенных на пересекающиеся по датам
// турниры. Рассматриваются только нетерминальные турниры; опционально выборка
// ограничивается зоной.
func (s *validationService) DetectDateConflicts(ctx context.Context, zoneID *int) ([]models.Conflict, error) {
	assignments, err := s.assignmentRepo.ListActiveHydrated(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active assignments: %w", err)
	}

	byReferee := make(map[int][]models.Assignment)
	for _, a := range assignments {
		byReferee[a.RefereeID] = append(byReferee[a.RefereeID], a)
	}

	conflicts := make([]models.Conflict, 0)
	for _, refereeAssignments := range byReferee {
		for i := 0; i < len(refereeAssignments); i++ {
			for j := i + 1; j < len(refereeAssignments); j++ {
				a1 := refereeAssignments[i]
				a2 := refereeAssignments[j]
				if !datesOverlap(a1.Tournament, a2.Tournament) {
					continue
				}
				conflicts = append(conflicts, models.Conflict{
					Referee:     a1.Referee,
					Assignment1: &a1,
					Assignment2: &a2,
					Severity:    conflictSeverity(a1.Tournament, a2.Tournament),
				})
			}
		}
	}
	return conflicts, nil
}

// datesOverlap — включительное пересечение интервалов по календарным дням:
// s1 <= e2 && s2 <= e1. Встык идущие турниры (один заканчивается накануне
// старта другого) конфликтом не считаются.
func datesOverlap(t1, t2 *models.Tournament) bool {
	s1, e1 := dateOnly(t1.StartDate), dateOnly(t1.EndDate)
	s2, e2 := dateOnly(t2.StartDate), dateOnly(t2.EndDate)
	return !s1.After(e2) && !s2.After(e1)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func conflictSeverity(t1, t2 *models.Tournament) string {
	diff := dateOnly(t1.StartDate).Sub(dateOnly(t2.StartDate))
	if diff < 0 {
		diff = -diff
	}
	days := int(diff.Hours() / 24)
	switch {
	case days == 0:
		return "high"
	case days <= 1:
		return "medium"
	default:
		return "low"
	}
}

// GetValidationSummary агрегирует количество проблем каждого вида поверх того
// же нетерминального набора назначений.
func (s *validationService) GetValidationSummary(ctx context.Context, zoneID *int) (*models.ValidationSummary, error) {
	conflicts, err := s.DetectDateConflicts(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	missing, err := s.countMissingRequirements(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	workloads, err := s.refereeRepo.ListActiveWorkloads(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to load referee workloads: %w", err)
	}

	overassigned := 0
	underassigned := 0
	for _, w := range workloads {
		if w.AssignmentCount > s.overloadThreshold {
			overassigned++
		}
		// Заявил доступность, но ни одного назначения не получил.
		if w.AssignmentCount == 0 && w.HasAvailability {
			underassigned++
		}
	}

	summary := &models.ValidationSummary{
		Conflicts:           len(conflicts),
		MissingRequirements: missing,
		Overassigned:        overassigned,
		Underassigned:       underassigned,
	}
	summary.TotalIssues = summary.Conflicts + summary.MissingRequirements +
		summary.Overassigned + summary.Underassigned
	return summary, nil
}

func (s *validationService) countMissingRequirements(ctx context.Context, zoneID *int) (int, error) {
	tournaments, err := s.tournamentRepo.ListNonTerminalHydrated(ctx, zoneID)
	if err != nil {
		return 0, fmt.Errorf("failed to load tournaments: %w", err)
	}

	count := 0
	for i := range tournaments {
		t := &tournaments[i]
		if t.Type == nil || t.Type.MinReferees <= 0 {
			continue
		}
		if len(t.Assignments) < t.Type.MinReferees {
			count++
		}
	}
	return count, nil
}
