package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/federgolf/referee-system/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound    = errors.New("tournament not found")
	ErrTournamentInvalidClub = errors.New("invalid club reference")
	ErrTournamentInvalidType = errors.New("invalid tournament type reference")
)

type ListTournamentsFilter struct {
	ZoneID      *int
	Status      *models.TournamentStatus
	NonTerminal bool
	Limit       int
	Offset      int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	// GetHydrated возвращает турнир вместе с клубом, зоной, типом и составом
	// назначений — явная загрузка агрегата вместо ленивых связей.
	GetHydrated(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	// ListNonTerminalHydrated — нетерминальные турниры с типом и назначениями,
	// опционально ограниченные зоной (для отчёта по требованиям).
	ListNonTerminalHydrated(ctx context.Context, zoneID *int) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
}

type postgresTournamentRepository struct {
	db             *sql.DB
	assignmentRepo AssignmentRepository
}

func NewPostgresTournamentRepository(db *sql.DB, assignmentRepo AssignmentRepository) TournamentRepository {
	return &postgresTournamentRepository{db: db, assignmentRepo: assignmentRepo}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, club_id, tournament_type_id, start_date, end_date, is_national, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.ClubID, t.TypeID, t.StartDate, t.EndDate, t.IsNational, t.Status, t.Notes,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, name, club_id, tournament_type_id, start_date, end_date, is_national, status, notes, created_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.ClubID, &t.TypeID, &t.StartDate, &t.EndDate,
		&t.IsNational, &t.Status, &t.Notes, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

const hydratedTournamentQuery = `
	SELECT
		t.id, t.name, t.club_id, t.tournament_type_id, t.start_date, t.end_date,
		t.is_national, t.status, t.notes, t.created_at,
		c.id, c.name, c.email, c.zone_id, c.is_active,
		z.id, z.code, z.name, z.email, z.folder_code, z.is_active,
		tt.id, tt.name, tt.is_national, tt.min_referees, tt.required_level
	FROM tournaments t
	LEFT JOIN clubs c ON c.id = t.club_id
	LEFT JOIN zones z ON z.id = c.zone_id
	LEFT JOIN tournament_types tt ON tt.id = t.tournament_type_id`

// scanHydratedTournament собирает агрегат с nullable-связями.
func scanHydratedTournament(scan func(dest ...interface{}) error) (*models.Tournament, error) {
	t := &models.Tournament{}
	var (
		clubID     sql.NullInt64
		clubName   sql.NullString
		clubEmail  sql.NullString
		clubZoneID sql.NullInt64
		clubActive sql.NullBool
		zoneID     sql.NullInt64
		zoneCode   sql.NullString
		zoneName   sql.NullString
		zoneEmail  sql.NullString
		zoneFolder sql.NullString
		zoneActive sql.NullBool
		typeID     sql.NullInt64
		typeName   sql.NullString
		typeNat    sql.NullBool
		typeMinRef sql.NullInt64
		typeReqLvl sql.NullString
	)

	err := scan(
		&t.ID, &t.Name, &t.ClubID, &t.TypeID, &t.StartDate, &t.EndDate,
		&t.IsNational, &t.Status, &t.Notes, &t.CreatedAt,
		&clubID, &clubName, &clubEmail, &clubZoneID, &clubActive,
		&zoneID, &zoneCode, &zoneName, &zoneEmail, &zoneFolder, &zoneActive,
		&typeID, &typeName, &typeNat, &typeMinRef, &typeReqLvl,
	)
	if err != nil {
		return nil, err
	}

	if clubID.Valid {
		t.Club = &models.Club{
			ID:       int(clubID.Int64),
			Name:     clubName.String,
			ZoneID:   int(clubZoneID.Int64),
			IsActive: clubActive.Bool,
		}
		if clubEmail.Valid {
			email := clubEmail.String
			t.Club.Email = &email
		}
	}
	if zoneID.Valid {
		t.Zone = &models.Zone{
			ID:       int(zoneID.Int64),
			Code:     zoneCode.String,
			Name:     zoneName.String,
			IsActive: zoneActive.Bool,
		}
		if zoneEmail.Valid {
			email := zoneEmail.String
			t.Zone.Email = &email
		}
		if zoneFolder.Valid {
			folder := zoneFolder.String
			t.Zone.FolderCode = &folder
		}
		if t.Club != nil {
			t.Club.Zone = t.Zone
		}
	}
	if typeID.Valid {
		t.Type = &models.TournamentType{
			ID:          int(typeID.Int64),
			Name:        typeName.String,
			IsNational:  typeNat.Bool,
			MinReferees: int(typeMinRef.Int64),
		}
		if typeReqLvl.Valid {
			lvl := typeReqLvl.String
			t.Type.RequiredLevel = &lvl
		}
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetHydrated(ctx context.Context, id int) (*models.Tournament, error) {
	query := hydratedTournamentQuery + ` WHERE t.id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	t, err := scanHydratedTournament(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	assignments, err := r.assignmentRepo.ListByTournament(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments for tournament %d: %w", t.ID, err)
	}
	t.Assignments = assignments
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `
		SELECT t.id, t.name, t.club_id, t.tournament_type_id, t.start_date, t.end_date,
			t.is_national, t.status, t.notes, t.created_at
		FROM tournaments t
		LEFT JOIN clubs c ON c.id = t.club_id
		WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.ZoneID != nil {
		query += fmt.Sprintf(" AND c.zone_id = $%d", argID)
		args = append(args, *filter.ZoneID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND t.status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.NonTerminal {
		query += " AND t.status NOT IN ('completed', 'cancelled')"
	}

	query += " ORDER BY t.start_date, t.id"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.Name, &t.ClubID, &t.TypeID, &t.StartDate, &t.EndDate,
			&t.IsNational, &t.Status, &t.Notes, &t.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) ListNonTerminalHydrated(ctx context.Context, zoneID *int) ([]models.Tournament, error) {
	query := hydratedTournamentQuery + `
	WHERE t.status NOT IN ('completed', 'cancelled')`

	args := []interface{}{}
	if zoneID != nil {
		query += ` AND c.zone_id = $1`
		args = append(args, *zoneID)
	}
	query += ` ORDER BY t.start_date, t.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanHydratedTournament(rows.Scan)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range tournaments {
		assignments, err := r.assignmentRepo.ListByTournament(ctx, tournaments[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load assignments for tournament %d: %w", tournaments[i].ID, err)
		}
		tournaments[i].Assignments = assignments
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1, club_id = $2, tournament_type_id = $3,
			start_date = $4, end_date = $5, is_national = $6, status = $7, notes = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.ClubID, t.TypeID, t.StartDate, t.EndDate, t.IsNational, t.Status, t.Notes, t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "tournaments_club_id_fkey":
				return ErrTournamentInvalidClub
			case "tournaments_tournament_type_id_fkey":
				return ErrTournamentInvalidType
			}
		}
	}
	return err
}
