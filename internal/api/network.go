package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/connectivity"
	"github.com/nerrad567/gray-logic-edge/internal/journal"
)

// NetworkStatus is the body of GET /network/status.
type NetworkStatus struct {
	Ready           bool `json:"ready"`
	LinkConnected   bool `json:"link_connected"`
	AddressAcquired bool `json:"address_acquired"`
}

// NetworkChange is the payload broadcast on ChannelNetworkChanged.
type NetworkChange struct {
	Signal       connectivity.Signal `json:"signal"`
	Before       NetworkStatus       `json:"before"`
	After        NetworkStatus       `json:"after"`
	ReadyChanged bool                `json:"ready_changed"`
	At           string              `json:"at"`
}

func statusOf(snap connectivity.Snapshot) NetworkStatus {
	return NetworkStatus{
		Ready:           snap.Ready(),
		LinkConnected:   snap.LinkConnected,
		AddressAcquired: snap.AddressAcquired,
	}
}

func (s *Server) handleNetworkStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusOf(s.tracker.Snapshot()))
}

// handleNetworkHistory lists journal entries, newest first.
func (s *Server) handleNetworkHistory(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, ErrCodeUnavailable, "connectivity journal is disabled")
		return
	}

	limit := journal.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, ErrCodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.journal.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing connectivity journal", "error", err)
		writeError(w, ErrCodeInternal, "failed to read connectivity journal")
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// broadcastChange forwards a tracker transition to WebSocket subscribers.
func (s *Server) broadcastChange(change connectivity.Change) {
	s.hub.Broadcast(ChannelNetworkChanged, NetworkChange{
		Signal:       change.Signal,
		Before:       statusOf(change.Before),
		After:        statusOf(change.After),
		ReadyChanged: change.ReadyChanged(),
		At:           change.At.UTC().Format(time.RFC3339Nano),
	})
}
