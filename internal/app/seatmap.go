package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ozanyurt/cinebook/api"
	"github.com/ozanyurt/cinebook/internal/domain"
	"github.com/shopspring/decimal"
)

// GetSeatMapHandler returns the full grid of a screening with each seat's
// current code. Reads are never cached: held-ness comes from the live lock
// index (read-repaired first) and reserved-ness from committed bookings.
func (app *Application) GetSeatMapHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	screeningID, err := app.readIDParam(r, "screeningId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	grid, err := app.seatRepo.GetSeatsByScreening(r.Context(), screeningID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if len(grid.Seats) == 0 {
		logger.Warn("seat map not found for screening", "screening_id", screeningID)
		app.notFoundResponse(w, r)
		return
	}

	err = app.applySeatCodes(r.Context(), screeningID, grid)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := toSeatMapResponse(grid)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) applySeatCodes(ctx context.Context, screeningID int, grid *domain.ScreeningSeats) error {
	heldSeatIDs, _, err := app.holdStore.PruneScreening(ctx, screeningID)
	if err != nil {
		return fmt.Errorf("failed to prune stale seat locks: %w", err)
	}

	bookedSeatIDs, err := app.bookingRepo.GetSeatIDsByScreening(ctx, screeningID)
	if err != nil {
		return fmt.Errorf("failed to get booked seats from DB: %w", err)
	}

	held := make(map[int]bool, len(heldSeatIDs))
	for _, id := range heldSeatIDs {
		held[id] = true
	}

	booked := make(map[int]bool, len(bookedSeatIDs))
	for _, id := range bookedSeatIDs {
		booked[id] = true
	}

	// Reserved wins over held: a just-confirmed booking may briefly coexist
	// with its old seat locks.
	for i := range grid.Seats {
		switch {
		case booked[grid.Seats[i].ID]:
			grid.Seats[i].Code = domain.SeatReserved
		case held[grid.Seats[i].ID]:
			grid.Seats[i].Code = domain.SeatHeld
		default:
			grid.Seats[i].Code = domain.SeatAvailable
		}
	}

	return nil
}

func toSeatMapResponse(grid *domain.ScreeningSeats) api.SeatMapResponse {
	return api.SeatMapResponse{
		ScreeningId: grid.ScreeningID,
		MovieTitle:  grid.MovieTitle,
		TheaterId:   grid.TheaterID,
		TheaterName: grid.TheaterName,
		HallId:      grid.HallID,
		HallName:    grid.HallName,
		StartsAt:    grid.StartsAt,
		Sections:    toSeatSections(grid),
	}
}

func toSeatSections(grid *domain.ScreeningSeats) []api.SeatSection {
	// Seats are pre-sorted by section, row, column, so sections and rows can
	// be built in a single pass.

	basePrice := decimal.NewFromFloat(domain.NumericToFloat64(grid.BasePrice))

	var sections []api.SeatSection
	currentSection := api.SeatSection{Section: grid.Seats[0].Section}
	currentRow := api.SeatRow{Row: grid.Seats[0].Row}

	for _, v := range grid.Seats {
		if v.Section != currentSection.Section {
			currentSection.Rows = append(currentSection.Rows, currentRow)
			sections = append(sections, currentSection)
			currentSection = api.SeatSection{Section: v.Section}
			currentRow = api.SeatRow{Row: v.Row}
		} else if v.Row != currentRow.Row {
			currentSection.Rows = append(currentSection.Rows, currentRow)
			currentRow = api.SeatRow{Row: v.Row}
		}

		currentRow.Seats = append(currentRow.Seats, api.Seat{
			Id:     v.ID,
			Row:    v.Row,
			Column: v.Col,
			Type:   v.Type,
			Price:  basePrice.Add(decimal.NewFromFloat(domain.NumericToFloat64(v.ExtraPrice))),
			Code:   string(v.Code),
		})
	}

	currentSection.Rows = append(currentSection.Rows, currentRow)
	sections = append(sections, currentSection)

	return sections
}
