package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kanbanlab/taskboard/internal/api/shared"
	"github.com/kanbanlab/taskboard/internal/domain"
)

// getUserIDFromContext extracts the authenticated user's ID from the request
// context, where the authentication middleware placed it.
func getUserIDFromContext(r *http.Request) (int64, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok || userID == 0 {
		return 0, false
	}
	return userID, true
}

// getPathID extracts a numeric ID from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, fmt.Errorf("%s is required: %w", paramName, domain.ErrValidation)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s has invalid format: %w", paramName, domain.ErrInvalidID)
	}

	return id, nil
}

// requireUserAndPathID extracts both the user ID from the context and a
// numeric ID from the path, writing the error response itself when either
// is missing. The boolean reports whether the handler may proceed.
func requireUserAndPathID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
) (userID, pathID int64, ok bool) {
	userID, found := getUserIDFromContext(r)
	if !found {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return 0, 0, false
	}

	pathID, err := getPathID(r, paramName)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}

	return userID, pathID, true
}

// respondServiceError maps a service layer error to its HTTP status and
// sanitized message, logging the original server side.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}
