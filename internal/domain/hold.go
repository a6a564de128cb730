package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Hold is a time-boxed, exclusive reservation of a seat set pending payment.
// It is created atomically across all requested seats or not at all, and is
// mutated only by confirmation (consumed) or expiry (revoked).
type Hold struct {
	ID          string `json:"-"`
	ScreeningID int
	SessionID   string
	UserID      int
	MovieTitle  string
	TheaterName string
	HallName    string
	StartsAt    time.Time
	BasePrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	Seats       []HoldSeat
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

type HoldSeat struct {
	SeatID     int
	Section    string
	Row        int
	Col        int
	SeatType   string
	ExtraPrice decimal.Decimal
}

func NewHold(screeningID int, sessionID string, userID int, grid *ScreeningSeats, ttl time.Duration) Hold {
	seats := toHoldSeats(grid.Seats)
	basePrice := decimal.NewFromFloat(NumericToFloat64(grid.BasePrice))
	now := time.Now()

	return Hold{
		ID:          uuid.New().String(),
		ScreeningID: screeningID,
		SessionID:   sessionID,
		UserID:      userID,
		MovieTitle:  grid.MovieTitle,
		TheaterName: grid.TheaterName,
		HallName:    grid.HallName,
		StartsAt:    grid.StartsAt,
		BasePrice:   basePrice,
		TotalPrice:  calculateTotalPrice(basePrice, seats),
		Seats:       seats,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
}

// VerifyOwner guards release and confirmation: only the session that created
// the hold may act on it.
func (h Hold) VerifyOwner(sessionID string) error {
	if h.SessionID != sessionID {
		return ErrHoldOwnership
	}

	return nil
}

// Expired is the lazy read-path expiry check. It must be applied on every
// lookup that grants confirm or release capability; the sweeper is only a
// best-effort cleanup behind it.
func (h Hold) Expired(now time.Time) bool {
	return now.After(h.ExpiresAt)
}

func (h Hold) SeatIDs() []int {
	ids := make([]int, len(h.Seats))
	for i, s := range h.Seats {
		ids[i] = s.SeatID
	}

	return ids
}

func calculateTotalPrice(basePrice decimal.Decimal, seats []HoldSeat) decimal.Decimal {
	total := decimal.Zero

	for _, s := range seats {
		total = total.Add(basePrice.Add(s.ExtraPrice))
	}

	return total
}

func toHoldSeats(seats []Seat) []HoldSeat {
	holdSeats := make([]HoldSeat, len(seats))

	for i, seat := range seats {
		holdSeats[i] = HoldSeat{
			SeatID:     seat.ID,
			Section:    seat.Section,
			Row:        seat.Row,
			Col:        seat.Col,
			SeatType:   seat.Type,
			ExtraPrice: decimal.NewFromFloat(NumericToFloat64(seat.ExtraPrice)),
		}
	}

	return holdSeats
}

// HoldStore is the concurrency core's shared mutable seat state. Every
// transition of a seat's held-ness goes through these batch operations; no
// caller may flip a single seat on its own.
type HoldStore interface {
	// Create acquires every seat of the hold or none of them. When any seat
	// is already locked it returns a *SeatConflictError naming exactly the
	// contested seats. ErrActiveHoldExists is returned when the owning
	// session already has a live hold on the screening.
	Create(ctx context.Context, hold Hold) error

	// Get returns the hold record, or ErrHoldNotFound. Callers own the lazy
	// expiry check via Hold.Expired.
	Get(ctx context.Context, holdID string) (*Hold, error)

	// GetSessionHoldID returns the live hold id owned by the session on the
	// screening, or the empty string.
	GetSessionHoldID(ctx context.Context, sessionID string, screeningID int) (string, error)

	// Release reverts all seats still owned by the hold and removes the
	// record. It reports whether anything was released; releasing an
	// unknown, consumed or expired hold is a no-op, not an error.
	Release(ctx context.Context, holdID string) (bool, error)

	// Claim consumes the hold for confirmation: the record must still exist
	// and every seat lock must still be owned by the hold, otherwise
	// ErrHoldNotFound / ErrHoldExpired and nothing is consumed. At most one
	// caller can claim a given hold.
	Claim(ctx context.Context, holdID string) (*Hold, error)

	// ReleaseSeats clears the seat locks of a claimed hold after the booking
	// has been durably committed.
	ReleaseSeats(ctx context.Context, hold Hold) error

	// PruneScreening drops lock-index entries whose seat locks have lapsed
	// and returns the still-valid and the reclaimed seat ids.
	PruneScreening(ctx context.Context, screeningID int) (valid []int, reclaimed []int, err error)
}
