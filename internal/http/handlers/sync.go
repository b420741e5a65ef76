package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mauv0809/tt-ratings/internal/pubsub"
	"github.com/mauv0809/tt-ratings/internal/syncer"
)

// Windows longer than this must be confirmed by the caller.
const maxUnconfirmedMonths = 12

type syncPlayerRequest struct {
	MonthsBack           *int  `json:"monthsBack" validate:"omitempty,min=1,max=240"`
	ConfirmExtendedRange bool  `json:"confirmExtendedRange"`
	SyncEvents           *bool `json:"syncEvents"`
}

type syncClubRequest struct {
	MonthsBack           *int   `json:"monthsBack" validate:"omitempty,min=1,max=240"`
	ConfirmExtendedRange bool   `json:"confirmExtendedRange"`
	ClubName             string `json:"clubName" validate:"omitempty,max=200"`
	SyncPlayers          *bool  `json:"syncPlayers"`
	UseRosterCache       bool   `json:"useRosterCache"`
}

type syncEventRequest struct {
	Name string `json:"name" validate:"omitempty,max=300"`
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type queuedResponse struct {
	Status string           `json:"status"`
	Topic  pubsub.EventType `json:"topic"`
}

func checkWindow(monthsBack *int, confirmed bool) (int, error) {
	if monthsBack == nil {
		return 0, nil
	}
	if *monthsBack > maxUnconfirmedMonths && !confirmed {
		return 0, fmt.Errorf("monthsBack above %d requires confirmExtendedRange=true", maxUnconfirmedMonths)
	}
	return *monthsBack, nil
}

func SyncPlayerHandler(svc syncer.Service, ps pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := pathID(r, "playerId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var req syncPlayerRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		months, err := checkWindow(req.MonthsBack, req.ConfirmExtendedRange)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if isAsync(r) {
			publish(w, r, ps, pubsub.EventSyncPlayer, pubsub.SyncRequest{
				Entity:     string(syncer.EntityPlayer),
				PlayerID:   playerID,
				MonthsBack: months,
				SyncEvents: req.SyncEvents,
			})
			return
		}

		log.Info("Syncing player", "playerID", playerID, "monthsBack", months)
		res, err := svc.SyncPlayer(r.Context(), playerID, syncer.PlayerOptions{SyncEvents: req.SyncEvents, MonthsBack: months})
		if err != nil {
			log.Error("Player sync failed", "playerID", playerID, "error", err)
			writeError(w, syncErrorStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func SyncClubHandler(svc syncer.Service, ps pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clubID, err := pathID(r, "clubId")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var req syncClubRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		months, err := checkWindow(req.MonthsBack, req.ConfirmExtendedRange)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		// Syncing every member is opt-in over HTTP.
		syncPlayers := req.SyncPlayers != nil && *req.SyncPlayers

		if isAsync(r) {
			publish(w, r, ps, pubsub.EventSyncClub, pubsub.SyncRequest{
				Entity:         string(syncer.EntityClub),
				ClubID:         clubID,
				MonthsBack:     months,
				ClubName:       req.ClubName,
				SyncPlayers:    &syncPlayers,
				UseRosterCache: req.UseRosterCache,
			})
			return
		}

		log.Info("Syncing club", "clubID", clubID, "syncPlayers", syncPlayers, "fromCache", req.UseRosterCache)
		res, err := svc.SyncClub(r.Context(), clubID, syncer.ClubOptions{
			ClubName:       req.ClubName,
			SyncPlayers:    &syncPlayers,
			MonthsBack:     months,
			UseRosterCache: req.UseRosterCache,
		})
		if err != nil {
			log.Error("Club sync failed", "clubID", clubID, "error", err)
			writeError(w, syncErrorStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func SyncEventHandler(svc syncer.Service, ps pubsub.PubSubClient) http.HandlerFunc {
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
		var req syncEventRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		meta := syncer.EventMeta{Name: strings.TrimSpace(req.Name)}
		if req.Date != "" {
			// Already validated as YYYY-MM-DD.
			date, _ := time.Parse(time.DateOnly, req.Date)
			meta.Date = &date
		}

		if isAsync(r) {
			publish(w, r, ps, pubsub.EventSyncEvent, pubsub.SyncRequest{
				Entity:    string(syncer.EntityEvent),
				EventID:   eventID,
				PlayerID:  playerID,
				EventName: meta.Name,
				EventDate: meta.Date,
			})
			return
		}

		res, err := svc.SyncEventForPlayer(r.Context(), eventID, playerID, meta)
		if err != nil {
			log.Error("Event sync failed", "eventID", eventID, "playerID", playerID, "error", err)
			writeError(w, syncErrorStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func publish(w http.ResponseWriter, r *http.Request, ps pubsub.PubSubClient, topic pubsub.EventType, req pubsub.SyncRequest) {
	if ps == nil {
		writeError(w, http.StatusServiceUnavailable, "async sync is not configured")
		return
	}
	req.DryRun = IsDryRunFromContext(r)
	if err := ps.SendMessage(r.Context(), topic, req); err != nil {
		log.Error("Failed to queue sync request", "topic", topic, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to queue sync request")
		return
	}
	writeJSON(w, http.StatusAccepted, queuedResponse{Status: "queued", Topic: topic})
}

// dispatch runs a decoded sync request against the engine.
func dispatch(ctx context.Context, svc syncer.Service, req pubsub.SyncRequest) error {
	switch syncer.EntityType(req.Entity) {
	case syncer.EntityPlayer:
		_, err := svc.SyncPlayer(ctx, req.PlayerID, syncer.PlayerOptions{SyncEvents: req.SyncEvents, MonthsBack: req.MonthsBack})
		return err
	case syncer.EntityClub:
		_, err := svc.SyncClub(ctx, req.ClubID, syncer.ClubOptions{
			ClubName:       req.ClubName,
			SyncPlayers:    req.SyncPlayers,
			MonthsBack:     req.MonthsBack,
			UseRosterCache: req.UseRosterCache,
		})
		return err
	case syncer.EntityEvent:
		_, err := svc.SyncEventForPlayer(ctx, req.EventID, req.PlayerID, syncer.EventMeta{Name: req.EventName, Date: req.EventDate})
		return err
	default:
		return fmt.Errorf("%w: %q", syncer.ErrUnknownEntity, req.Entity)
	}
}
