package domain

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type SeatCode string

const (
	SeatAvailable SeatCode = "available"
	SeatHeld      SeatCode = "held"
	SeatReserved  SeatCode = "reserved"
)

// ScreeningSeats is the full seat grid of one screening, pre-sorted by
// section, row, column.
type ScreeningSeats struct {
	ScreeningID int
	TheaterID   int
	TheaterName string
	MovieTitle  string
	HallID      int
	HallName    string
	StartsAt    time.Time
	BasePrice   pgtype.Numeric
	Seats       []Seat
}

type Seat struct {
	ID         int
	Section    string
	Row        int
	Col        int
	Type       string
	ExtraPrice pgtype.Numeric
	Code       SeatCode
}

type SeatRepository interface {
	GetSeatsByScreening(ctx context.Context, screeningID int) (*ScreeningSeats, error)
	GetSeatsByScreeningAndSeatIds(ctx context.Context, screeningID int, seatIDs []int) (*ScreeningSeats, error)
}

func NumericToFloat64(numeric pgtype.Numeric) float64 {
	if !numeric.Valid {
		return 0.0
	}

	float64Value, floatErr := numeric.Float64Value()
	if floatErr != nil {
		return 0.0
	}

	return float64Value.Float64
}
