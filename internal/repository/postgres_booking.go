package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ozanyurt/cinebook/internal/domain"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

// Create commits the payment, the booking and its seat set as one unit. The
// unique constraint on booking_seats(screening_id, seat_id) is the durable
// single-owner guarantee: losing that race rolls the whole transaction back.
func (p *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking, payment *domain.Payment) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO payments (user_id, reference, amount, currency, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`

		err := tx.QueryRow(
			ctx,
			query,
			payment.UserID,
			payment.Reference,
			payment.Amount,
			payment.Currency,
			payment.Status).Scan(&payment.ID)

		if err != nil {
			return err
		}

		booking.PaymentID = payment.ID

		query = `
			INSERT INTO bookings (user_id, screening_id, payment_id, total_amount, status, confirmation_code)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`

		err = tx.QueryRow(
			ctx,
			query,
			booking.UserID,
			booking.ScreeningID,
			booking.PaymentID,
			booking.TotalAmount,
			booking.Status,
			booking.ConfirmationCode).Scan(&booking.ID, &booking.CreatedAt)

		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(booking.Seats))
		for i := range booking.Seats {
			booking.Seats[i].BookingID = booking.ID

			rows = append(rows, []any{
				booking.ID,
				booking.ScreeningID,
				booking.Seats[i].SeatID,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"booking_seats"},
			[]string{"booking_id", "screening_id", "seat_id"},
			pgx.CopyFromRows(rows),
		)

		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			seatIDs := make([]int, len(booking.Seats))
			for i, seat := range booking.Seats {
				seatIDs[i] = seat.SeatID
			}

			return &domain.SeatConflictError{SeatIDs: seatIDs}
		}

		return err
	}

	return nil
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}

func (p *PostgresBookingRepository) GetSeatIDsByScreening(ctx context.Context, screeningID int) ([]int, error) {
	query := `
		SELECT seat_id
		FROM booking_seats
		WHERE screening_id = $1
	`

	rows, err := p.db.Query(ctx, query, screeningID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seatIDs := make([]int, 0)

	for rows.Next() {
		var seatID int

		if err = rows.Scan(&seatID); err != nil {
			return nil, err
		}

		seatIDs = append(seatIDs, seatID)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seatIDs, nil
}

func (p *PostgresBookingRepository) GetSummariesByUserId(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.BookingSummary, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			b.id,
			m.title,
			m.poster_url,
			sc.starts_at,
			t.name,
			h.name,
			b.confirmation_code,
			b.created_at
		FROM bookings b
		JOIN screenings sc ON b.screening_id = sc.id
		JOIN movies m ON sc.movie_id = m.id
		JOIN halls h ON sc.hall_id = h.id
		JOIN theaters t ON h.theater_id = t.id
		WHERE b.user_id = $1 AND b.status = 'confirmed'
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userID, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	summaries := make([]domain.BookingSummary, 0)
	totalRecords := 0

	for rows.Next() {
		var summary domain.BookingSummary

		err := rows.Scan(
			&totalRecords,
			&summary.BookingID,
			&summary.MovieTitle,
			&summary.MoviePosterUrl,
			&summary.StartsAt,
			&summary.TheaterName,
			&summary.HallName,
			&summary.ConfirmationCode,
			&summary.CreatedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return summaries, metadata, nil
}

func (p *PostgresBookingRepository) GetByIdAndUserId(
	ctx context.Context,
	bookingID,
	userID int) (*domain.BookingDetail, error) {

	query := `
		SELECT
			b.id,
			m.title,
			m.poster_url,
			sc.starts_at,
			t.name,
			h.name,
			b.confirmation_code,
			b.total_amount,
			b.created_at
		FROM bookings b
		JOIN screenings sc ON b.screening_id = sc.id
		JOIN movies m ON sc.movie_id = m.id
		JOIN halls h ON sc.hall_id = h.id
		JOIN theaters t ON h.theater_id = t.id
		WHERE b.id = $1 AND b.user_id = $2
	`

	var detail domain.BookingDetail

	err := p.db.QueryRow(ctx, query, bookingID, userID).Scan(
		&detail.BookingID,
		&detail.MovieTitle,
		&detail.MoviePosterUrl,
		&detail.StartsAt,
		&detail.TheaterName,
		&detail.HallName,
		&detail.ConfirmationCode,
		&detail.TotalAmount,
		&detail.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	seats, err := p.retrieveBookingSeats(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	detail.Seats = seats

	return &detail, nil
}

func (p *PostgresBookingRepository) retrieveBookingSeats(
	ctx context.Context,
	bookingID int) ([]domain.BookingDetailSeat, error) {

	query := `
		SELECT s.section, s.seat_row, s.seat_col, s.seat_type
		FROM booking_seats bs
		JOIN seats s ON bs.seat_id = s.id
		WHERE bs.booking_id = $1
		ORDER BY s.section, s.seat_row, s.seat_col
	`

	rows, err := p.db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.BookingDetailSeat, 0)

	for rows.Next() {
		var seat domain.BookingDetailSeat

		err := rows.Scan(
			&seat.Section,
			&seat.Row,
			&seat.Col,
			&seat.Type,
		)

		if err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}
