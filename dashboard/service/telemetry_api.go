package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/yaron8/netwatch/dashboard/dao"
)

func (api *APIServer) FrameHandler(w http.ResponseWriter, r *http.Request) {
	api.writeJSON(w, api.frames.Frame())
}

func (api *APIServer) LatestHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := api.store.GetLatest(r.Context())
	if errors.Is(err, dao.ErrNotFound) {
		http.Error(w, "No snapshot received yet", http.StatusNotFound)
		return
	}
	if err != nil {
		api.logger.Error("Error retrieving latest snapshot", "error", err)
		http.Error(w, fmt.Sprintf("Error retrieving latest snapshot: %v", err),
			http.StatusInternalServerError)
		return
	}
	api.writeJSON(w, snap)
}

func (api *APIServer) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	samples, err := api.store.GetHistory(r.Context())
	if err != nil {
		api.logger.Error("Error retrieving history", "error", err)
		http.Error(w, fmt.Sprintf("Error retrieving history: %v", err),
			http.StatusInternalServerError)
		return
	}
	api.writeJSON(w, samples)
}

func (api *APIServer) writeJSON(w http.ResponseWriter, v any) {
	// Set content type and status code before encoding
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Can't send error response after WriteHeader, just log it
		api.logger.Error("Error encoding response to JSON", "error", err)
	}
}
