// Package api holds the request and response types of the HTTP surface.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type CreateHoldRequest struct {
	SeatIdList []int `json:"seatIdList" validate:"required,min=1,max=8,unique,dive,gt=0"`
}

type HoldSeat struct {
	Id      int             `json:"id"`
	Section string          `json:"section"`
	Row     int             `json:"row"`
	Column  int             `json:"column"`
	Type    string          `json:"type"`
	Price   decimal.Decimal `json:"price"`
}

type HoldResponse struct {
	HoldId      string          `json:"holdId"`
	ScreeningId int             `json:"screeningId"`
	MovieTitle  string          `json:"movieTitle"`
	TheaterName string          `json:"theaterName"`
	HallName    string          `json:"hallName"`
	StartsAt    string          `json:"startsAt"`
	Seats       []HoldSeat      `json:"seats"`
	HoldTime    int             `json:"holdTime"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

type ConfirmBookingRequest struct {
	HoldId           string `json:"holdId" validate:"required,uuid4"`
	PaymentReference string `json:"paymentReference" validate:"required"`
}

type BookingSeat struct {
	Section string `json:"section"`
	Row     int    `json:"row"`
	Column  int    `json:"column"`
	Type    string `json:"type"`
}

type BookingResponse struct {
	BookingId        int             `json:"bookingId"`
	ConfirmationCode string          `json:"confirmationCode"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	Seats            []BookingSeat   `json:"seats"`
	CreatedAt        time.Time       `json:"createdAt"`
}

type Seat struct {
	Id     int             `json:"id"`
	Row    int             `json:"row"`
	Column int             `json:"column"`
	Type   string          `json:"type"`
	Price  decimal.Decimal `json:"price"`
	Code   string          `json:"code"`
}

type SeatRow struct {
	Row   int    `json:"row"`
	Seats []Seat `json:"seats"`
}

type SeatSection struct {
	Section string    `json:"section"`
	Rows    []SeatRow `json:"rows"`
}

type SeatMapResponse struct {
	ScreeningId int           `json:"screeningId"`
	MovieTitle  string        `json:"movieTitle"`
	TheaterId   int           `json:"theaterId"`
	TheaterName string        `json:"theaterName"`
	HallId      int           `json:"hallId"`
	HallName    string        `json:"hallName"`
	StartsAt    time.Time     `json:"startsAt"`
	Sections    []SeatSection `json:"sections"`
}

type UserBookingsParams struct {
	Page     *int `validate:"omitempty,gt=0"`
	PageSize *int `validate:"omitempty,gt=0,max=50"`
}

type BookingSummary struct {
	Id               int       `json:"id"`
	MovieTitle       string    `json:"movieTitle"`
	MoviePosterUrl   string    `json:"moviePosterUrl"`
	TheaterName      string    `json:"theaterName"`
	HallName         string    `json:"hallName"`
	Date             time.Time `json:"date"`
	ConfirmationCode string    `json:"confirmationCode"`
	CreatedAt        time.Time `json:"createdAt"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	PageSize     int `json:"pageSize"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	TotalRecords int `json:"totalRecords"`
}

type UserBookingsResponse struct {
	Bookings []BookingSummary `json:"bookings"`
	Metadata Metadata         `json:"metadata"`
}

type BookingDetailResponse struct {
	Id               int             `json:"id"`
	MovieTitle       string          `json:"movieTitle"`
	MoviePosterUrl   string          `json:"moviePosterUrl"`
	TheaterName      string          `json:"theaterName"`
	HallName         string          `json:"hallName"`
	Date             time.Time       `json:"date"`
	ConfirmationCode string          `json:"confirmationCode"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	Seats            []BookingSeat   `json:"seats"`
	CreatedAt        time.Time       `json:"createdAt"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}
