package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/SergeyKozhin/family-calendar-backend/internal/model"
)

func (a *Api) logError(r *http.Request, err error) {
	a.logger.Errorw("server error", "method", r.Method, "uri", r.URL.RequestURI(), "error", err)
}

func (a *Api) errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	data := map[string]interface{}{"error": message}

	if err := a.writeJSON(w, status, data, nil); err != nil {
		a.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (a *Api) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	a.logError(r, err)

	message := "the server encountered a problem and could not process your request"
	a.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (a *Api) clientErrorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	a.logger.Debugw("client error", "err", message)
	a.errorResponse(w, r, status, message)
}

func (a *Api) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	a.clientErrorResponse(w, r, http.StatusNotFound, message)
}

func (a *Api) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	a.clientErrorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (a *Api) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	a.clientErrorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (a *Api) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	a.clientErrorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

func (a *Api) unauthorizedResponse(w http.ResponseWriter, r *http.Request, err error) {
	a.clientErrorResponse(w, r, http.StatusUnauthorized, err.Error())
}

func (a *Api) forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	a.clientErrorResponse(w, r, http.StatusForbidden, message)
}

var clientErrors = []struct {
	err    error
	status int
}{
	{model.ErrNoRecord, http.StatusNotFound},
	{model.ErrAlreadyExists, http.StatusConflict},
	{model.ErrMissingMember, http.StatusUnauthorized},
	{model.ErrCrossFamilyAccess, http.StatusForbidden},
	{model.ErrForbidden, http.StatusForbidden},
	{model.ErrInvalidScope, http.StatusUnprocessableEntity},
	{model.ErrInvalidRecurrenceRule, http.StatusUnprocessableEntity},
	{model.ErrInvalidEvent, http.StatusUnprocessableEntity},
	{model.ErrInvalidParticipants, http.StatusUnprocessableEntity},
	{model.ErrInvalidCategory, http.StatusUnprocessableEntity},
	{model.ErrInvalidWindow, http.StatusUnprocessableEntity},
	{model.ErrAmbiguousTruncation, http.StatusUnprocessableEntity},
	{model.ErrNotTask, http.StatusUnprocessableEntity},
}

// errorStatus maps a service error to the status reported to the client. It
// returns false for errors that are the server's fault.
func errorStatus(err error) (int, bool) {
	if errors.Is(err, model.ErrWriteFailed) {
		return http.StatusInternalServerError, false
	}

	for _, e := range clientErrors {
		if errors.Is(err, e.err) {
			return e.status, true
		}
	}

	return http.StatusInternalServerError, false
}

func (a *Api) serviceErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status, ok := errorStatus(err)
	if !ok {
		a.serverErrorResponse(w, r, err)
		return
	}

	a.clientErrorResponse(w, r, status, err.Error())
}
