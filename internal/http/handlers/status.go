package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/mauv0809/tt-ratings/internal/syncer"
)

func SyncStatusHandler(svc syncer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		entity := syncer.EntityType(q.Get("entityType"))
		id, err := strconv.ParseInt(q.Get("entityId"), 10, 64)
		if entity == "" || err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "entityType and a numeric entityId are required")
			return
		}

		status, err := svc.Status(r.Context(), entity, id)
		if err != nil {
			if errors.Is(err, syncer.ErrUnknownEntity) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			log.Error("Failed to read sync status", "entityType", entity, "entityId", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to read sync status")
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}

type consistencyResponse struct {
	PlayerID    int64               `json:"playerId"`
	Divergences []divergenceSummary `json:"divergences"`
}

type divergenceSummary struct {
	EventID int64    `json:"eventId"`
	Fields  []string `json:"fields"`
}

func ConsistencyHandler(svc syncer.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := pathID(r, "playerId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		divs, err := svc.CheckConsistency(r.Context(), playerID)
		if err != nil {
			log.Error("Consistency check failed", "playerID", playerID, "error", err)
			writeError(w, http.StatusInternalServerError, "consistency check failed")
			return
		}
		resp := consistencyResponse{PlayerID: playerID, Divergences: []divergenceSummary{}}
		for _, d := range divs {
			resp.Divergences = append(resp.Divergences, divergenceSummary{EventID: d.EventID, Fields: d.Fields()})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
