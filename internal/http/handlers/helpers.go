package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"github.com/mauv0809/tt-ratings/internal/notifier"
	"github.com/mauv0809/tt-ratings/internal/ratings"
	"github.com/mauv0809/tt-ratings/internal/syncer"
)

var validate = validator.New()

// IsDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func IsDryRunFromContext(r *http.Request) bool {
	return notifier.IsDryRun(r.Context())
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// pathID reads a positive numeric path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// decodeBody decodes an optional JSON body into v and validates it. An empty body is fine.
func decodeBody(r *http.Request, v any) error {
	if r.Body != nil {
		err := json.NewDecoder(r.Body).Decode(v)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("invalid JSON body: %w", err)
		}
	}
	if err := validate.StructCtx(r.Context(), v); err != nil {
		return fmt.Errorf("validation failed: %v", err)
	}
	return nil
}

// syncErrorStatus maps a pipeline error onto an HTTP status.
func syncErrorStatus(err error) int {
	var fetchErr *ratings.FetchError
	var extractErr *ratings.ExtractionError
	switch {
	case errors.Is(err, syncer.ErrEmptyRoster):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr), errors.As(err, &extractErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isAsync(r *http.Request) bool {
	return r.URL.Query().Get("async") == "true"
}
