package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ozanyurt/cinebook/api"
	"github.com/ozanyurt/cinebook/internal/domain"
)

const (
	bookingConfirmationTemplate = "booking_confirmation.tmpl"

	DefaultPage     = 1
	DefaultPageSize = 10
)

func (app *Application) ConfirmBookingHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	screeningID, err := app.readIDParam(r, "screeningId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.ConfirmBookingRequest

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

	hold, err := app.holdStore.Get(r.Context(), input.HoldId)
	if err != nil {
		if errors.Is(err, domain.ErrHoldNotFound) {
			app.notFoundResponseWithErr(w, r, fmt.Errorf("hold %s not found", input.HoldId))
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	if hold.ScreeningID != screeningID {
		logger.Warn(
			"booking confirmation attempt with mismatched screening ID in URL",
			"hold_screening_id", hold.ScreeningID,
			"url_screening_id", screeningID,
		)
		app.notFoundResponse(w, r)
		return
	}

	sessionID := app.sessionManager.Token(r.Context())
	if err := hold.VerifyOwner(sessionID); err != nil {
		logger.Warn("booking confirmation attempt by non-owner session", "hold_id", input.HoldId)
		app.forbiddenResponse(w, r)
		return
	}

	if hold.Expired(time.Now()) {
		logger.Warn("booking confirmation attempt on expired hold", "hold_id", input.HoldId)
		app.holdExpiredResponse(w, r)
		return
	}

	// Verification happens before the claim so that a failed payment leaves
	// the hold intact: the user keeps their seats and can retry.
	verification, err := app.paymentVerifier.VerifyPayment(r.Context(), input.PaymentReference)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if !verification.Succeeded {
		logger.Warn("payment verification failed", "hold_id", input.HoldId, "reason", verification.FailureReason)
		app.paymentFailedResponse(w, r)
		return
	}

	if !verification.Amount.Equal(hold.TotalPrice) {
		logger.Warn(
			"payment amount mismatch",
			"hold_id", input.HoldId,
			"paid", verification.Amount,
			"expected", hold.TotalPrice,
		)
		app.paymentFailedResponse(w, r)
		return
	}

	claimed, err := app.holdStore.Claim(r.Context(), input.HoldId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrHoldNotFound):
			app.notFoundResponseWithErr(w, r, fmt.Errorf("hold %s not found", input.HoldId))
		case errors.Is(err, domain.ErrHoldExpired):
			logger.Warn("hold lapsed between verification and claim", "hold_id", input.HoldId)
			app.holdExpiredResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	userID := app.contextGetUserId(r)

	payment := &domain.Payment{
		UserID:    userID,
		Reference: input.PaymentReference,
		Amount:    verification.Amount,
		Currency:  verification.Currency,
		Status:    domain.PaymentStatusCompleted,
	}

	booking := &domain.Booking{
		UserID:           userID,
		ScreeningID:      screeningID,
		TotalAmount:      claimed.TotalPrice,
		Status:           domain.BookingStatusConfirmed,
		ConfirmationCode: newConfirmationCode(),
		Seats:            toBookingSeats(screeningID, claimed.SeatIDs()),
	}

	err = app.bookingRepo.Create(r.Context(), booking, payment)
	if err != nil {
		// The claim already consumed the hold, so the seat locks must not
		// outlive this request whatever happened.
		app.releaseClaimedSeats(*claimed)

		var conflict *domain.SeatConflictError
		if errors.As(err, &conflict) {
			logger.Warn("booking lost the durable race for seats", "seat_ids", conflict.SeatIDs)
			app.metrics.seatConflicts.Add(r.Context(), 1)
			app.seatConflictResponse(w, r, conflict)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	app.releaseClaimedSeats(*claimed)
	app.metrics.bookingsConfirmed.Add(r.Context(), 1)

	app.background(func() {
		app.sendConfirmationEmail(userID, *claimed, booking.ConfirmationCode)
	})

	resp := api.BookingResponse{
		BookingId:        booking.ID,
		ConfirmationCode: booking.ConfirmationCode,
		TotalPrice:       booking.TotalAmount,
		Seats:            toApiBookingSeats(claimed.Seats),
		CreatedAt:        booking.CreatedAt,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) releaseClaimedSeats(hold domain.Hold) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := app.holdStore.ReleaseSeats(ctx, hold)
	if err != nil {
		// Locks self-expire via TTL, so a failure here only delays the seats
		// showing as available.
		app.logger.Error("failed to release claimed seat locks", "hold_id", hold.ID, "error", err)
	}
}

func (app *Application) sendConfirmationEmail(userID int, hold domain.Hold, confirmationCode string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := app.userRepo.GetById(ctx, userID)
	if err != nil {
		app.logger.Error("failed to load user for confirmation email", "user_id", userID, "error", err)
		return
	}

	seatLabels := make([]string, len(hold.Seats))
	for i, seat := range hold.Seats {
		seatLabels[i] = fmt.Sprintf("%s%d-%d", seat.Section, seat.Row, seat.Col)
	}

	data := map[string]any{
		"Name":             user.Name,
		"MovieTitle":       hold.MovieTitle,
		"TheaterName":      hold.TheaterName,
		"HallName":         hold.HallName,
		"StartsAt":         hold.StartsAt.Format("Jan 2, 2006 15:04"),
		"Seats":            strings.Join(seatLabels, ", "),
		"ConfirmationCode": confirmationCode,
	}

	err = app.mailer.Send(user.Email, bookingConfirmationTemplate, data)
	if err != nil {
		app.logger.Error("failed to send confirmation email", "user_id", userID, "error", err)
	}
}

func newConfirmationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
}

func toBookingSeats(screeningID int, seatIDs []int) []domain.BookingSeat {
	seats := make([]domain.BookingSeat, len(seatIDs))

	for i, id := range seatIDs {
		seats[i] = domain.BookingSeat{
			ScreeningID: screeningID,
			SeatID:      id,
		}
	}

	return seats
}

func toApiBookingSeats(seats []domain.HoldSeat) []api.BookingSeat {
	apiSeats := make([]api.BookingSeat, len(seats))

	for i, v := range seats {
		apiSeats[i] = api.BookingSeat{
			Section: v.Section,
			Row:     v.Row,
			Column:  v.Col,
			Type:    v.SeatType,
		}
	}

	return apiSeats
}

func (app *Application) GetUserBookingsHandler(w http.ResponseWriter, r *http.Request) {
	params := api.UserBookingsParams{}

	if page := r.URL.Query().Get("page"); page != "" {
		pageNum, err := strconv.Atoi(page)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("invalid page parameter"))
			return
		}
		params.Page = &pageNum
	}

	if pageSize := r.URL.Query().Get("pageSize"); pageSize != "" {
		pageSizeNum, err := strconv.Atoi(pageSize)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("invalid pageSize parameter"))
			return
		}
		params.PageSize = &pageSizeNum
	}

	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userID := app.contextGetUserId(r)
	pagination := toPagination(params)

	summaries, metadata, err := app.bookingRepo.GetSummariesByUserId(r.Context(), userID, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.UserBookingsResponse{
		Bookings: toApiBookingSummaries(summaries),
		Metadata: toApiMetadata(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetUserBookingByIdHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := app.readIDParam(r, "bookingId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userID := app.contextGetUserId(r)

	detail, err := app.bookingRepo.GetByIdAndUserId(r.Context(), bookingID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.BookingDetailResponse{
		Id:               detail.BookingID,
		MovieTitle:       detail.MovieTitle,
		MoviePosterUrl:   detail.MoviePosterUrl,
		TheaterName:      detail.TheaterName,
		HallName:         detail.HallName,
		Date:             detail.StartsAt,
		ConfirmationCode: detail.ConfirmationCode,
		TotalPrice:       detail.TotalAmount,
		Seats:            toApiBookingDetailSeats(detail.Seats),
		CreatedAt:        detail.CreatedAt,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiBookingSummaries(summaries []domain.BookingSummary) []api.BookingSummary {
	apiSummaries := make([]api.BookingSummary, len(summaries))

	for i, v := range summaries {
		apiSummaries[i] = api.BookingSummary{
			Id:               v.BookingID,
			MovieTitle:       v.MovieTitle,
			MoviePosterUrl:   v.MoviePosterUrl,
			TheaterName:      v.TheaterName,
			HallName:         v.HallName,
			Date:             v.StartsAt,
			ConfirmationCode: v.ConfirmationCode,
			CreatedAt:        v.CreatedAt,
		}
	}

	return apiSummaries
}

func toApiBookingDetailSeats(seats []domain.BookingDetailSeat) []api.BookingSeat {
	apiSeats := make([]api.BookingSeat, len(seats))

	for i, v := range seats {
		apiSeats[i] = api.BookingSeat{
			Section: v.Section,
			Row:     v.Row,
			Column:  v.Col,
			Type:    v.Type,
		}
	}

	return apiSeats
}

func toApiMetadata(metadata *domain.Metadata) api.Metadata {
	if metadata == nil {
		return api.Metadata{}
	}

	return api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		PageSize:     metadata.PageSize,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		TotalRecords: metadata.TotalRecords,
	}
}

func toPagination(params api.UserBookingsParams) domain.Pagination {
	pagination := domain.Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if params.Page != nil {
		pagination.Page = *params.Page
	}
	if params.PageSize != nil {
		pagination.PageSize = *params.PageSize
	}

	return pagination
}
