package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ozanyurt/cinebook/internal/domain"
)

type PostgresSeatRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSeatRepository(db *pgxpool.Pool) *PostgresSeatRepository {
	return &PostgresSeatRepository{
		db: db,
	}
}

const screeningSeatsQuery = `
	SELECT
		sc.id,
		t.id AS theater_id,
		t.name AS theater_name,
		m.title AS movie_title,
		h.id AS hall_id,
		h.name AS hall_name,
		sc.starts_at,
		sc.base_price,
		se.id AS seat_id,
		se.section,
		se.seat_row,
		se.seat_col,
		se.seat_type,
		se.extra_price
	FROM screenings sc
	JOIN seats se ON sc.hall_id = se.hall_id
	JOIN halls h ON sc.hall_id = h.id
	JOIN theaters t ON h.theater_id = t.id
	JOIN movies m ON sc.movie_id = m.id
	WHERE sc.id = $1
`

func (p *PostgresSeatRepository) GetSeatsByScreening(ctx context.Context, screeningID int) (*domain.ScreeningSeats, error) {
	query := screeningSeatsQuery + ` ORDER BY se.section, se.seat_row, se.seat_col`

	return p.queryScreeningSeats(ctx, query, screeningID)
}

func (p *PostgresSeatRepository) GetSeatsByScreeningAndSeatIds(
	ctx context.Context,
	screeningID int,
	seatIDs []int) (*domain.ScreeningSeats, error) {

	query := screeningSeatsQuery + ` AND se.id = ANY($2) ORDER BY se.section, se.seat_row, se.seat_col`

	return p.queryScreeningSeats(ctx, query, screeningID, seatIDs)
}

func (p *PostgresSeatRepository) queryScreeningSeats(
	ctx context.Context,
	query string,
	args ...any) (*domain.ScreeningSeats, error) {

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var screeningSeats domain.ScreeningSeats

	for rows.Next() {
		var seat domain.Seat

		err = rows.Scan(
			&screeningSeats.ScreeningID,
			&screeningSeats.TheaterID,
			&screeningSeats.TheaterName,
			&screeningSeats.MovieTitle,
			&screeningSeats.HallID,
			&screeningSeats.HallName,
			&screeningSeats.StartsAt,
			&screeningSeats.BasePrice,
			&seat.ID,
			&seat.Section,
			&seat.Row,
			&seat.Col,
			&seat.Type,
			&seat.ExtraPrice,
		)
		if err != nil {
			return nil, err
		}

		seat.Code = domain.SeatAvailable
		screeningSeats.Seats = append(screeningSeats.Seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return &screeningSeats, nil
}
