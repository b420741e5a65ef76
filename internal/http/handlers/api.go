package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mauv0809/tt-ratings/internal/insights"
	"github.com/mauv0809/tt-ratings/internal/store"
)

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

func readError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, insights.ErrInvalidCursor) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Error("Failed to load "+what, "error", err)
	writeError(w, http.StatusInternalServerError, "failed to load "+what)
}

func LeaderboardHandler(reader insights.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clubID, err := pathID(r, "clubId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		page, err := reader.Leaderboard(r.Context(), clubID, queryLimit(r), r.URL.Query().Get("cursor"))
		if err != nil {
			readError(w, err, "leaderboard")
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func HistoryHandler(reader insights.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := pathID(r, "playerId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		q := r.URL.Query()
		page, err := reader.History(r.Context(), playerID, insights.ParseRange(q.Get("range")), queryLimit(r), q.Get("cursor"))
		if err != nil {
			readError(w, err, "history")
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func OverviewHandler(reader insights.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := pathID(r, "playerId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ov, err := reader.Overview(r.Context(), playerID, insights.ParseRange(r.URL.Query().Get("range")))
		if err != nil {
			readError(w, err, "overview")
			return
		}
		if ov == nil {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		writeJSON(w, http.StatusOK, ov)
	}
}

func EventInsightsHandler(reader insights.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := pathID(r, "eventId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		playerID, err := pathID(r, "playerId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ev, err := reader.EventForPlayer(r.Context(), eventID, playerID)
		if err != nil {
			readError(w, err, "event insights")
			return
		}
		if ev == nil {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeJSON(w, http.StatusOK, ev)
	}
}

type avatarResponse struct {
	PlayerID  int64   `json:"playerId"`
	AvatarURL *string `json:"avatarUrl"`
}

type avatarRequest struct {
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url,max=2048"`
}

func GetAvatarHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := pathID(r, "playerId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		p, err := st.GetPlayer(r.Context(), playerID)
		if err != nil {
			readError(w, err, "player")
			return
		}
		if p == nil {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		writeJSON(w, http.StatusOK, avatarResponse{PlayerID: playerID, AvatarURL: p.AvatarURL})
	}
}

// PutAvatarHandler sets or, with an empty avatarUrl, clears a player's avatar.
func PutAvatarHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := pathID(r, "playerId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var req avatarRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		url := strings.TrimSpace(req.AvatarURL)
		if err := st.UpdatePlayerAvatar(r.Context(), playerID, url); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeError(w, http.StatusNotFound, "player not found")
				return
			}
			log.Error("Failed to update avatar", "playerID", playerID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update avatar")
			return
		}
		resp := avatarResponse{PlayerID: playerID}
		if url != "" {
			resp.AvatarURL = &url
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
