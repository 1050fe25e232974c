package services

import (
	"context"
	"testing"
	"time"

	"github.com/federgolf/referee-system/models"
	"github.com/federgolf/referee-system/repositories"
)

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func testAssignment(id, refereeID int, start, end string) models.Assignment {
	return models.Assignment{
		ID:        id,
		RefereeID: refereeID,
		Referee:   &models.Referee{ID: refereeID, FirstName: "Mario", LastName: "Rossi"},
		Tournament: &models.Tournament{
			ID:        id * 100,
			Name:      "Trofeo",
			StartDate: day(start),
			EndDate:   day(end),
			Status:    models.StatusAssigned,
		},
	}
}

func TestDetectDateConflicts(t *testing.T) {
	tests := []struct {
		name          string
		assignments   []models.Assignment
		wantConflicts int
		wantSeverity  string
	}{
		{
			name: "overlapping ranges conflict",
			assignments: []models.Assignment{
				testAssignment(1, 7, "2025-06-10", "2025-06-12"),
				testAssignment(2, 7, "2025-06-12", "2025-06-14"),
			},
			wantConflicts: 1,
			wantSeverity:  "low",
		},
		{
			name: "same start is high severity",
			assignments: []models.Assignment{
				testAssignment(1, 7, "2025-06-10", "2025-06-12"),
				testAssignment(2, 7, "2025-06-10", "2025-06-11"),
			},
			wantConflicts: 1,
			wantSeverity:  "high",
		},
		{
			name: "one day apart is medium severity",
			assignments: []models.Assignment{
				testAssignment(1, 7, "2025-06-10", "2025-06-12"),
				testAssignment(2, 7, "2025-06-11", "2025-06-13"),
			},
			wantConflicts: 1,
			wantSeverity:  "medium",
		},
		{
			name: "back to back tournaments do not conflict",
			assignments: []models.Assignment{
				testAssignment(1, 7, "2025-06-10", "2025-06-12"),
				testAssignment(2, 7, "2025-06-13", "2025-06-15"),
			},
			wantConflicts: 0,
		},
		{
			name: "different referees never conflict",
			assignments: []models.Assignment{
				testAssignment(1, 7, "2025-06-10", "2025-06-12"),
				testAssignment(2, 8, "2025-06-10", "2025-06-12"),
			},
			wantConflicts: 0,
		},
		{
			name:          "no assignments",
			assignments:   nil,
			wantConflicts: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assignmentRepo := &fakeAssignmentRepo{
				listActiveHydratedFn: func(ctx context.Context, zoneID *int) ([]models.Assignment, error) {
					return tt.assignments, nil
				},
			}
			svc := NewValidationService(assignmentRepo, nil, nil, 10)

			conflicts, err := svc.DetectDateConflicts(context.Background(), nil)
			if err != nil {
				t.Fatalf("DetectDateConflicts: %v", err)
			}
			if len(conflicts) != tt.wantConflicts {
				t.Fatalf("conflicts = %d, want %d", len(conflicts), tt.wantConflicts)
			}
			if tt.wantConflicts > 0 && conflicts[0].Severity != tt.wantSeverity {
				t.Errorf("severity = %q, want %q", conflicts[0].Severity, tt.wantSeverity)
			}
		})
	}
}

func TestDetectDateConflictsPairsAllOverlaps(t *testing.T) {
	// Три пересекающихся назначения одного арбитра дают три пары.
	assignmentRepo := &fakeAssignmentRepo{
		listActiveHydratedFn: func(ctx context.Context, zoneID *int) ([]models.Assignment, error) {
			return []models.Assignment{
				testAssignment(1, 7, "2025-06-10", "2025-06-20"),
				testAssignment(2, 7, "2025-06-11", "2025-06-12"),
				testAssignment(3, 7, "2025-06-12", "2025-06-13"),
			}, nil
		},
	}
	svc := NewValidationService(assignmentRepo, nil, nil, 10)

	conflicts, err := svc.DetectDateConflicts(context.Background(), nil)
	if err != nil {
		t.Fatalf("DetectDateConflicts: %v", err)
	}
	if len(conflicts) != 3 {
		t.Errorf("conflicts = %d, want 3", len(conflicts))
	}
}

func TestGetValidationSummary(t *testing.T) {
	minReferees := 3
	assignmentRepo := &fakeAssignmentRepo{
		listActiveHydratedFn: func(ctx context.Context, zoneID *int) ([]models.Assignment, error) {
			return []models.Assignment{
				testAssignment(1, 7, "2025-06-10", "2025-06-12"),
				testAssignment(2, 7, "2025-06-11", "2025-06-13"),
			}, nil
		},
	}
	tournamentRepo := &fakeTournamentRepo{
		listNonTermFn: func(ctx context.Context, zoneID *int) ([]models.Tournament, error) {
			return []models.Tournament{
				{
					ID:          1,
					Type:        &models.TournamentType{MinReferees: minReferees},
					Assignments: []models.Assignment{{ID: 1}},
				},
				{
					ID:          2,
					Type:        &models.TournamentType{MinReferees: 1},
					Assignments: []models.Assignment{{ID: 2}},
				},
				{ID: 3}, // без типа — требований нет
			}, nil
		},
	}
	refereeRepo := &fakeRefereeRepo{
		listWorkloadsFn: func(ctx context.Context, zoneID *int) ([]repositories.RefereeWorkload, error) {
			return []repositories.RefereeWorkload{
				{Referee: models.Referee{ID: 1}, AssignmentCount: 12},                       // перегружен
				{Referee: models.Referee{ID: 2}, AssignmentCount: 0, HasAvailability: true}, // не задействован
				{Referee: models.Referee{ID: 3}, AssignmentCount: 0, HasAvailability: false},
				{Referee: models.Referee{ID: 4}, AssignmentCount: 5, HasAvailability: true},
			}, nil
		},
	}

	svc := NewValidationService(assignmentRepo, tournamentRepo, refereeRepo, 10)
	summary, err := svc.GetValidationSummary(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetValidationSummary: %v", err)
	}

	if summary.Conflicts != 1 {
		t.Errorf("Conflicts = %d, want 1", summary.Conflicts)
	}
	if summary.MissingRequirements != 1 {
		t.Errorf("MissingRequirements = %d, want 1", summary.MissingRequirements)
	}
	if summary.Overassigned != 1 {
		t.Errorf("Overassigned = %d, want 1", summary.Overassigned)
	}
	if summary.Underassigned != 1 {
		t.Errorf("Underassigned = %d, want 1", summary.Underassigned)
	}
	if summary.TotalIssues != 4 {
		t.Errorf("TotalIssues = %d, want 4", summary.TotalIssues)
	}
}
