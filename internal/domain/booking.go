package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is the durable outcome of a confirmed hold. Immutable once
// confirmed, except for an explicit refund flow flipping it to cancelled.
type Booking struct {
	ID               int
	UserID           int
	ScreeningID      int
	PaymentID        int
	TotalAmount      decimal.Decimal
	Status           BookingStatus
	ConfirmationCode string
	Seats            []BookingSeat
	CreatedAt        time.Time
}

type BookingSeat struct {
	BookingID   int
	ScreeningID int
	SeatID      int
}

type BookingSummary struct {
	BookingID        int
	MovieTitle       string
	MoviePosterUrl   string
	StartsAt         time.Time
	TheaterName      string
	HallName         string
	ConfirmationCode string
	CreatedAt        time.Time
}

type BookingDetail struct {
	BookingID        int
	MovieTitle       string
	MoviePosterUrl   string
	StartsAt         time.Time
	TheaterName      string
	HallName         string
	ConfirmationCode string
	TotalAmount      decimal.Decimal
	Seats            []BookingDetailSeat
	CreatedAt        time.Time
}

type BookingDetailSeat struct {
	Section string
	Row     int
	Col     int
	Type    string
}

type BookingRepository interface {
	// Create persists the payment, the booking and its seat set in one
	// transaction. A unique violation on (screening_id, seat_id) surfaces
	// as a *SeatConflictError.
	Create(ctx context.Context, booking *Booking, payment *Payment) error

	GetSeatIDsByScreening(ctx context.Context, screeningID int) ([]int, error)
	GetSummariesByUserId(ctx context.Context, userID int, pagination Pagination) ([]BookingSummary, *Metadata, error)
	GetByIdAndUserId(ctx context.Context, bookingID, userID int) (*BookingDetail, error)
}
