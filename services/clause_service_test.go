package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/federgolf/referee-system/models"
	"github.com/federgolf/referee-system/repositories"
)

func TestResolveClauses(t *testing.T) {
	deletedAt := time.Now()
	clauseRepo := &fakeClauseRepo{
		listSelectionsFn: func(ctx context.Context, notificationID int) ([]models.ClauseSelection, error) {
			return []models.ClauseSelection{
				{
					PlaceholderCode: "CLAUSOLA_CLUB_SPESE",
					Clause:          &models.Clause{ID: 1, Content: "Spese a carico del circolo."},
				},
				{
					// Мягко удалённая клаузула отдаёт последнее известное содержимое.
					PlaceholderCode: "CLAUSOLA_ARBITRO_COMUNICAZIONI",
					Clause:          &models.Clause{ID: 2, Content: "Contattare la segreteria.", DeletedAt: &deletedAt},
				},
			}, nil
		},
	}
	svc := NewClauseService(clauseRepo)

	resolved, err := svc.ResolveClauses(context.Background(), 5)
	if err != nil {
		t.Fatalf("ResolveClauses: %v", err)
	}

	if len(resolved) != 2 {
		t.Fatalf("resolved %d placeholders, want 2", len(resolved))
	}
	if resolved["CLAUSOLA_CLUB_SPESE"] != "Spese a carico del circolo." {
		t.Errorf("unexpected content: %q", resolved["CLAUSOLA_CLUB_SPESE"])
	}
	if resolved["CLAUSOLA_ARBITRO_COMUNICAZIONI"] != "Contattare la segreteria." {
		t.Error("soft-deleted clause did not resolve to its last-known content")
	}
}

func TestResolveClausesEmpty(t *testing.T) {
	clauseRepo := &fakeClauseRepo{
		listSelectionsFn: func(ctx context.Context, notificationID int) ([]models.ClauseSelection, error) {
			return []models.ClauseSelection{}, nil
		},
	}
	svc := NewClauseService(clauseRepo)

	resolved, err := svc.ResolveClauses(context.Background(), 5)
	if err != nil {
		t.Fatalf("ResolveClauses: %v", err)
	}
	if len(resolved) != 0 {
		t.Errorf("resolved %d placeholders, want 0", len(resolved))
	}
}

func TestClauseCreateValidation(t *testing.T) {
	svc := NewClauseService(&fakeClauseRepo{})

	tests := []struct {
		name   string
		clause models.Clause
	}{
		{"missing code", models.Clause{Title: "t", Content: "c", AppliesTo: models.AudienceClub}},
		{"missing content", models.Clause{Code: "X", Title: "t", AppliesTo: models.AudienceClub}},
		{"bad audience", models.Clause{Code: "X", Title: "t", Content: "c", AppliesTo: "everyone"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Create(context.Background(), &tt.clause)
			if !errors.Is(err, ErrValidationFailed) {
				t.Errorf("Create error = %v, want ErrValidationFailed", err)
			}
		})
	}
}

func TestClauseErrorMapping(t *testing.T) {
	clauseRepo := &fakeClauseRepo{
		getByIDFn: func(ctx context.Context, id int, includeDeleted bool) (*models.Clause, error) {
			if includeDeleted {
				t.Error("GetByID must exclude deleted clauses for direct reads")
			}
			return nil, repositories.ErrClauseNotFound
		},
		createFn: func(ctx context.Context, c *models.Clause) error {
			return repositories.ErrClauseCodeConflict
		},
	}
	svc := NewClauseService(clauseRepo)

	if _, err := svc.GetByID(context.Background(), 99); !errors.Is(err, ErrClauseNotFound) {
		t.Errorf("GetByID error = %v, want ErrClauseNotFound", err)
	}

	clause := models.Clause{Code: "DUP", Title: "t", Content: "c", AppliesTo: models.AudienceAll}
	if err := svc.Create(context.Background(), &clause); !errors.Is(err, ErrClauseCodeConflict) {
		t.Errorf("Create error = %v, want ErrClauseCodeConflict", err)
	}
}
