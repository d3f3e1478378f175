package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// validatorsHandler handles the /validators.csv endpoint
func (api *APIServer) validatorsHandler(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if h := r.Header.Get("If-Modified-Since"); h != "" {
		if t, err := http.ParseTime(h); err == nil {
			since = t
		}
	}

	resp, err := api.csvValidators.GetCSVValidators(since)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error generating validators CSV: %v", err),
			http.StatusInternalServerError)
		return
	}

	w.Header().Set("Last-Modified", resp.LastModified.UTC().Format(http.TimeFormat))
	if resp.HTTPResponseCode == http.StatusNotModified {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(resp.HTTPResponseCode)
	fmt.Fprint(w, resp.CSVData)
}

// snapshotHandler returns the current snapshot without advancing the network
func (api *APIServer) snapshotHandler(w http.ResponseWriter, r *http.Request) {
	api.writeJSON(w, api.state.Snapshot())
}

func (api *APIServer) distributionHandler(w http.ResponseWriter, r *http.Request) {
	api.writeJSON(w, api.state.Distribution())
}

func (api *APIServer) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Can't send error response after WriteHeader, just log it
		api.logger.Error("Error encoding JSON response", "error", err)
	}
}
