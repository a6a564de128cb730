package domain

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Screening is a movie/hall/time slot. Its base price is set at scheduling
// time and acts as the pricing source for every seat of the grid.
type Screening struct {
	ID          int
	MovieID     int
	MovieTitle  string
	TheaterID   int
	TheaterName string
	HallID      int
	HallName    string
	StartsAt    time.Time
	BasePrice   pgtype.Numeric
}

type ScreeningRepository interface {
	GetById(ctx context.Context, id int) (*Screening, error)
	GetUpcomingIDs(ctx context.Context) ([]int, error)
}
