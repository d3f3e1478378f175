package service

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/yaron8/netwatch/dashboard/dao"
	"github.com/yaron8/netwatch/telemetrics"
)

type validatorsResponse struct {
	LastUpdate string                  `json:"last_update,omitempty"`
	Validators []telemetrics.Validator `json:"validators"`
}

// ListValidatorsHandler returns the full validator table synced by the ETL.
func (api *APIServer) ListValidatorsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	validators, err := api.store.GetValidators(ctx)
	if err != nil {
		api.logger.Error("Error retrieving validators", "error", err)
		http.Error(w, fmt.Sprintf("Error retrieving validators: %v", err),
			http.StatusInternalServerError)
		return
	}

	resp := validatorsResponse{Validators: validators}
	ts, err := api.store.GetLastUpdateTime(ctx)
	switch {
	case err == nil:
		resp.LastUpdate = time.Unix(ts, 0).UTC().Format(time.RFC3339)
	case !errors.Is(err, dao.ErrNotFound):
		api.logger.Error("Error retrieving last update time", "error", err)
	}
	api.writeJSON(w, resp)
}

func (api *APIServer) GetValidatorHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	v, err := api.store.GetValidator(r.Context(), id)
	if errors.Is(err, dao.ErrNotFound) {
		http.Error(w, fmt.Sprintf("Unknown validator %s", id), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Error retrieving validator: %v", err),
			http.StatusInternalServerError)
		return
	}
	api.writeJSON(w, v)
}
