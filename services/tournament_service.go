package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/federgolf/referee-system/live"
	"github.com/federgolf/referee-system/models"
	"github.com/federgolf/referee-system/repositories"
)

// TournamentService управляет турнирами и составом назначений.
type TournamentService interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error

	AssignReferee(ctx context.Context, assignment *models.Assignment) error
	ListAssignments(ctx context.Context, tournamentID int) ([]models.Assignment, error)
	RemoveAssignment(ctx context.Context, assignmentID int) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	assignmentRepo repositories.AssignmentRepository
	validation     ValidationService
	hub            *live.Hub
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	assignmentRepo repositories.AssignmentRepository,
	validation ValidationService,
	hub *live.Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		assignmentRepo: assignmentRepo,
		validation:     validation,
		hub:            hub,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, t *models.Tournament) error {
	if err := validateTournament(t); err != nil {
		return err
	}
	if t.Status == "" {
		t.Status = models.StatusOpen
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return mapTournamentError(err)
	}
	s.logger.Info("tournament created", "tournament_id", t.ID, "name", t.Name)
	return nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetHydrated(ctx, id)
	if err != nil {
		return nil, mapTournamentError(err)
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx, filter)
}

func (s *tournamentService) Update(ctx context.Context, t *models.Tournament) error {
	if err := validateTournament(t); err != nil {
		return err
	}
	// Статус через этот метод не меняется, только через UpdateStatus.
	existing, err := s.tournamentRepo.GetByID(ctx, t.ID)
	if err != nil {
		return mapTournamentError(err)
	}
	t.Status = existing.Status

	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return mapTournamentError(err)
	}
	return nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	switch status {
	case models.StatusOpen, models.StatusClosed, models.StatusAssigned,
		models.StatusCompleted, models.StatusCancelled:
	default:
		return ErrTournamentInvalidStatus
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, status); err != nil {
		return mapTournamentError(err)
	}
	s.logger.Info("tournament status updated", "tournament_id", id, "status", status)
	return nil
}

// AssignReferee добавляет назначение и сообщает администраторам о
// появившихся конфликтах дат у этого арбитра.
func (s *tournamentService) AssignReferee(ctx context.Context, a *models.Assignment) error {
	if a.Role == "" {
		a.Role = models.RoleReferee
	}
	if err := s.assignmentRepo.Create(ctx, a); err != nil {
		switch {
		case errors.Is(err, repositories.ErrAssignmentDuplicate):
			return ErrAssignmentConflict
		case errors.Is(err, repositories.ErrAssignmentInvalidReferee):
			return ErrRefereeNotFound
		case errors.Is(err, repositories.ErrAssignmentInvalidEvent):
			return ErrTournamentNotFound
		}
		return err
	}

	s.broadcastConflicts(ctx, a)
	return nil
}

func (s *tournamentService) broadcastConflicts(ctx context.Context, a *models.Assignment) {
	conflicts, err := s.validation.DetectDateConflicts(ctx, nil)
	if err != nil {
		s.logger.Error("failed to recheck conflicts after assignment",
			"assignment_id", a.ID, "error", err)
		return
	}

	relevant := make([]models.Conflict, 0)
	for _, c := range conflicts {
		if c.Referee != nil && c.Referee.ID == a.RefereeID {
			relevant = append(relevant, c)
		}
	}
	if len(relevant) == 0 {
		return
	}

	s.hub.BroadcastToRoom(tournamentRoom(a.TournamentID), live.Event{
		Type: live.EventAssignmentConflicts,
		Payload: map[string]interface{}{
			"referee_id": a.RefereeID,
			"conflicts":  relevant,
		},
	})
}

func (s *tournamentService) ListAssignments(ctx context.Context, tournamentID int) ([]models.Assignment, error) {
	assignments, err := s.assignmentRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return models.SortAssignmentsByRole(assignments), nil
}

func (s *tournamentService) RemoveAssignment(ctx context.Context, assignmentID int) error {
	if err := s.assignmentRepo.Delete(ctx, assignmentID); err != nil {
		if errors.Is(err, repositories.ErrAssignmentNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}
	return nil
}

func validateTournament(t *models.Tournament) error {
	if t.Name == "" {
		return fmt.Errorf("%w: tournament name is required", ErrValidationFailed)
	}
	if t.EndDate.Before(t.StartDate) {
		return ErrTournamentInvalidDateRange
	}
	return nil
}

func mapTournamentError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	default:
		return err
	}
}
