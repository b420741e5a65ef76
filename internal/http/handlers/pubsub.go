package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/mauv0809/tt-ratings/internal/notifier"
	"github.com/mauv0809/tt-ratings/internal/pubsub"
	"github.com/mauv0809/tt-ratings/internal/ratings"
	"github.com/mauv0809/tt-ratings/internal/syncer"
)

// SyncPushHandler receives sync requests from a Pub/Sub push subscription.
// A non-2xx answer makes Pub/Sub redeliver, so only failures worth retrying get one.
func SyncPushHandler(svc syncer.Service, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received sync message", "body", string(bodyBytes))

		var envelope pubsub.PushEnvelope
		if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var req pubsub.SyncRequest
		if err := pubsubClient.ProcessMessage(rawData, &req); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}

		ctx := r.Context()
		if req.DryRun {
			ctx = notifier.WithDryRun(ctx, true)
		}
		log.Info("Processing queued sync", "entity", req.Entity, "messageID", envelope.Message.MessageID)
		if err := dispatch(ctx, svc, req); err != nil {
			if permanent(err) {
				log.Warn("Dropping sync message", "entity", req.Entity, "error", err)
				w.Write([]byte("OK"))
				return
			}
			log.Error("Queued sync failed", "entity", req.Entity, "error", err)
			http.Error(w, "Sync failed", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// permanent reports whether redelivering the request would fail the same way.
func permanent(err error) bool {
	var extractErr *ratings.ExtractionError
	var parseErr *ratings.ParseError
	return errors.Is(err, syncer.ErrUnknownEntity) ||
		errors.Is(err, syncer.ErrEmptyRoster) ||
		errors.As(err, &extractErr) ||
		errors.As(err, &parseErr)
}
