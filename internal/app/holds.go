package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ozanyurt/cinebook/api"
	"github.com/ozanyurt/cinebook/internal/domain"
	"github.com/shopspring/decimal"
)

func (app *Application) CreateHoldHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	screeningID, err := app.readIDParam(r, "screeningId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.CreateHoldRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	screening, err := app.screeningRepo.GetById(r.Context(), screeningID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	if screening.StartsAt.Before(time.Now()) {
		logger.Warn("hold creation attempt for a screening that already started", "screening_id", screeningID)
		app.badRequestResponse(w, r, fmt.Errorf("the screening has already started"))
		return
	}

	sessionID := app.sessionManager.Token(r.Context())

	holdID, err := app.holdStore.GetSessionHoldID(r.Context(), sessionID, screeningID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if holdID != "" {
		logger.Warn("hold creation attempt rejected: session already holds seats for this screening")
		app.badRequestResponse(w, r, fmt.Errorf("an active hold already exists for this screening"))
		return
	}

	seatIDs := input.SeatIdList

	bookedSeatIDs, err := app.bookingRepo.GetSeatIDsByScreening(r.Context(), screeningID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	booked := make(map[int]bool, len(bookedSeatIDs))
	for _, id := range bookedSeatIDs {
		booked[id] = true
	}

	var conflicting []int
	for _, seatID := range seatIDs {
		if booked[seatID] {
			conflicting = append(conflicting, seatID)
		}
	}

	if len(conflicting) > 0 {
		logger.Warn("hold creation conflict: user selected already booked seats", "seat_ids", conflicting)
		app.metrics.seatConflicts.Add(r.Context(), 1)
		app.seatConflictResponse(w, r, &domain.SeatConflictError{SeatIDs: conflicting})
		return
	}

	grid, err := app.seatRepo.GetSeatsByScreeningAndSeatIds(r.Context(), screeningID, seatIDs)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if len(grid.Seats) != len(seatIDs) {
		logger.Warn("hold creation failed: one or more requested seat IDs do not exist for the screening", "requested_seats", seatIDs)
		app.badRequestResponse(w, r, fmt.Errorf("the provided seat IDs don't match the available seats for the screening"))
		return
	}

	userID := app.sessionManager.GetInt(r.Context(), SessionKeyUserId.String())

	hold := domain.NewHold(screeningID, sessionID, userID, grid, app.config.HoldTTL)

	err = app.holdStore.Create(r.Context(), hold)
	if err != nil {
		var conflict *domain.SeatConflictError

		switch {
		case errors.As(err, &conflict):
			logger.Warn("hold creation conflict due to race condition: seats locked by another hold", "seat_ids", conflict.SeatIDs)
			app.metrics.seatConflicts.Add(r.Context(), 1)
			app.seatConflictResponse(w, r, conflict)
		case errors.Is(err, domain.ErrActiveHoldExists):
			app.badRequestResponse(w, r, fmt.Errorf("an active hold already exists for this screening"))
		default:
			app.serverErrorResponse(w, r, fmt.Errorf("seats couldn't be acquired: %w", err))
		}

		return
	}

	app.metrics.holdsCreated.Add(r.Context(), 1)

	resp := toHoldResponse(hold, app.config.HoldTTL)

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toHoldResponse(hold domain.Hold, ttl time.Duration) api.HoldResponse {
	return api.HoldResponse{
		HoldId:      hold.ID,
		ScreeningId: hold.ScreeningID,
		MovieTitle:  hold.MovieTitle,
		TheaterName: hold.TheaterName,
		HallName:    hold.HallName,
		StartsAt:    hold.StartsAt.Format(time.RFC1123),
		Seats:       toApiHoldSeats(hold.Seats, hold.BasePrice),
		HoldTime:    int(ttl.Seconds()),
		ExpiresAt:   hold.ExpiresAt,
		BasePrice:   hold.BasePrice,
		TotalPrice:  hold.TotalPrice,
	}
}

func toApiHoldSeats(seats []domain.HoldSeat, basePrice decimal.Decimal) []api.HoldSeat {
	apiSeats := make([]api.HoldSeat, len(seats))

	for i, v := range seats {
		apiSeats[i] = api.HoldSeat{
			Id:      v.SeatID,
			Section: v.Section,
			Row:     v.Row,
			Column:  v.Col,
			Type:    v.SeatType,
			Price:   basePrice.Add(v.ExtraPrice),
		}
	}

	return apiSeats
}

// ReleaseHoldHandler is idempotent: releasing a hold that is unknown, already
// expired or already consumed returns 204 without touching anything.
func (app *Application) ReleaseHoldHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	holdID := chi.URLParam(r, "holdId")
	if holdID == "" {
		app.badRequestResponse(w, r, fmt.Errorf("invalid hold ID"))
		return
	}

	hold, err := app.holdStore.Get(r.Context(), holdID)
	if err != nil {
		if errors.Is(err, domain.ErrHoldNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	sessionID := app.sessionManager.Token(r.Context())
	if err := hold.VerifyOwner(sessionID); err != nil {
		logger.Warn("hold release attempt by non-owner session", "hold_id", holdID)
		app.forbiddenResponse(w, r)
		return
	}

	released, err := app.holdStore.Release(r.Context(), holdID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if released {
		app.metrics.holdsReleased.Add(r.Context(), 1)
	}

	w.WriteHeader(http.StatusNoContent)
}
