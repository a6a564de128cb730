package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ozanyurt/cinebook/internal/domain"
)

type PostgresScreeningRepository struct {
	db *pgxpool.Pool
}

func NewPostgresScreeningRepository(db *pgxpool.Pool) *PostgresScreeningRepository {
	return &PostgresScreeningRepository{
		db: db,
	}
}

func (p *PostgresScreeningRepository) GetById(ctx context.Context, id int) (*domain.Screening, error) {
	query := `
		SELECT
			sc.id,
			sc.movie_id,
			m.title,
			t.id,
			t.name,
			h.id,
			h.name,
			sc.starts_at,
			sc.base_price
		FROM screenings sc
		JOIN movies m ON sc.movie_id = m.id
		JOIN halls h ON sc.hall_id = h.id
		JOIN theaters t ON h.theater_id = t.id
		WHERE sc.id = $1
	`

	var screening domain.Screening

	err := p.db.QueryRow(ctx, query, id).Scan(
		&screening.ID,
		&screening.MovieID,
		&screening.MovieTitle,
		&screening.TheaterID,
		&screening.TheaterName,
		&screening.HallID,
		&screening.HallName,
		&screening.StartsAt,
		&screening.BasePrice,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &screening, nil
}

// GetUpcomingIDs returns the screenings the sweeper should scan. Past
// screenings cannot carry live holds anymore, their locks all lapse via TTL.
func (p *PostgresScreeningRepository) GetUpcomingIDs(ctx context.Context) ([]int, error) {
	query := `
		SELECT id
		FROM screenings
		WHERE starts_at > NOW()
		ORDER BY id
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)

	for rows.Next() {
		var id int

		if err = rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
