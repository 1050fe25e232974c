package services

import (
	"context"
	"errors"
	"testing"

	"github.com/federgolf/referee-system/live"
	"github.com/federgolf/referee-system/models"
	"github.com/federgolf/referee-system/repositories"
)

func TestTournamentCreateValidation(t *testing.T) {
	var created *models.Tournament
	repo := &fakeTournamentRepo{
		createFn: func(ctx context.Context, tournament *models.Tournament) error {
			created = tournament
			return nil
		},
	}
	svc := NewTournamentService(repo, nil, nil, live.NewHub(testLogger()), testLogger())

	err := svc.Create(context.Background(), &models.Tournament{
		StartDate: day("2025-06-15"), EndDate: day("2025-06-17"),
	})
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("nameless tournament error = %v, want ErrValidationFailed", err)
	}

	err = svc.Create(context.Background(), &models.Tournament{
		Name: "Trofeo", StartDate: day("2025-06-17"), EndDate: day("2025-06-15"),
	})
	if !errors.Is(err, ErrTournamentInvalidDateRange) {
		t.Errorf("inverted range error = %v, want ErrTournamentInvalidDateRange", err)
	}

	err = svc.Create(context.Background(), &models.Tournament{
		Name: "Trofeo", StartDate: day("2025-06-15"), EndDate: day("2025-06-17"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != models.StatusOpen {
		t.Errorf("default status = %q, want open", created.Status)
	}
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	svc := NewTournamentService(&fakeTournamentRepo{}, nil, nil, live.NewHub(testLogger()), testLogger())

	err := svc.UpdateStatus(context.Background(), 1, models.TournamentStatus("archived"))
	if !errors.Is(err, ErrTournamentInvalidStatus) {
		t.Fatalf("UpdateStatus error = %v, want ErrTournamentInvalidStatus", err)
	}
}

func TestAssignRefereeErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{"duplicate assignment", repositories.ErrAssignmentDuplicate, ErrAssignmentConflict},
		{"unknown referee", repositories.ErrAssignmentInvalidReferee, ErrRefereeNotFound},
		{"unknown tournament", repositories.ErrAssignmentInvalidEvent, ErrTournamentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assignmentRepo := &fakeAssignmentRepo{
				createFn: func(ctx context.Context, a *models.Assignment) error {
					return tt.repoErr
				},
			}
			svc := NewTournamentService(&fakeTournamentRepo{}, assignmentRepo, nil, live.NewHub(testLogger()), testLogger())

			err := svc.AssignReferee(context.Background(), &models.Assignment{TournamentID: 1, RefereeID: 7})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AssignReferee error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAssignRefereeDefaultsRoleAndRechecksConflicts(t *testing.T) {
	var created *models.Assignment
	assignmentRepo := &fakeAssignmentRepo{
		createFn: func(ctx context.Context, a *models.Assignment) error {
			created = a
			return nil
		},
		listActiveHydratedFn: func(ctx context.Context, zoneID *int) ([]models.Assignment, error) {
			return nil, nil
		},
	}
	validation := NewValidationService(assignmentRepo, &fakeTournamentRepo{}, &fakeRefereeRepo{}, 10)
	svc := NewTournamentService(&fakeTournamentRepo{}, assignmentRepo, validation, live.NewHub(testLogger()), testLogger())

	if err := svc.AssignReferee(context.Background(), &models.Assignment{TournamentID: 1, RefereeID: 7}); err != nil {
		t.Fatalf("AssignReferee: %v", err)
	}
	if created.Role != models.RoleReferee {
		t.Errorf("default role = %q, want referee", created.Role)
	}
}

func TestRemoveAssignmentNotFound(t *testing.T) {
	assignmentRepo := &fakeAssignmentRepo{
		deleteFn: func(ctx context.Context, id int) error {
			return repositories.ErrAssignmentNotFound
		},
	}
	svc := NewTournamentService(&fakeTournamentRepo{}, assignmentRepo, nil, live.NewHub(testLogger()), testLogger())

	if err := svc.RemoveAssignment(context.Background(), 99); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("RemoveAssignment error = %v, want ErrAssignmentNotFound", err)
	}
}
