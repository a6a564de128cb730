package app

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/ozanyurt/cinebook/api"
	"github.com/ozanyurt/cinebook/internal/domain"
	appvalidator "github.com/ozanyurt/cinebook/internal/validator"
)

const (
	ErrInternalServer   = "The server encountered a problem and could not process your request"
	ErrNotFound         = "The requested resource not found"
	ErrValidationFailed = "One or more fields failed validation"
	ErrUnauthorized     = "You must be logged in to access this resource"
	ErrForbidden        = "You don't have permission to access this resource"
	ErrHoldExpired      = "The hold has expired, please select your seats again"
	ErrPaymentFailed    = "The payment could not be verified, your seats are still held"
)

func (app *Application) logError(r *http.Request, err error) {
	logger := app.contextGetLogger(r)

	logger.Error(err.Error(), "method", r.Method, "uri", r.URL.RequestURI())
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) notFoundResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		app.serverErrorResponse(w, r, err)
		return
	}

	apiErrors := make([]api.ValidationError, len(validationErrors))
	for i, fieldErr := range validationErrors {
		apiErrors[i] = api.ValidationError{
			Field: fieldErr.Field(),
			Issue: appvalidator.ValidationMessage(fieldErr),
		}
	}

	resp := api.ValidationErrorResponse{
		Message:          ErrValidationFailed,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: apiErrors,
	}

	writeErr := app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if writeErr != nil {
		app.logError(r, writeErr)
		w.WriteHeader(500)
	}
}

// seatConflictResponse names exactly the contested seats so the client can
// re-select instead of retrying blindly.
func (app *Application) seatConflictResponse(w http.ResponseWriter, r *http.Request, conflict *domain.SeatConflictError) {
	ids := make([]string, len(conflict.SeatIDs))
	for i, id := range conflict.SeatIDs {
		ids[i] = strconv.Itoa(id)
	}

	message := fmt.Sprintf("The following seats are no longer available: %s", strings.Join(ids, ", "))
	app.errorResponse(w, r, http.StatusConflict, message)
}

func (app *Application) holdExpiredResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusGone, ErrHoldExpired)
}

func (app *Application) paymentFailedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusPaymentRequired, ErrPaymentFailed)
}

func (app *Application) unauthorizedAccessResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, ErrUnauthorized)
}

func (app *Application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusForbidden, ErrForbidden)
}
