package rest

import (
	"net/http"
	"time"

	"github.com/heartmarshall/cityguide-bot/internal/datasync"
)

// lastPass exposes the most recent reconciliation; datasync.Reconciler
// implements it.
type lastPass interface {
	Last() (datasync.PassResult, bool)
}

// SyncHandler reports the state of store reconciliation.
type SyncHandler struct {
	reconciler lastPass
}

// NewSyncHandler creates a SyncHandler.
func NewSyncHandler(reconciler lastPass) *SyncHandler {
	return &SyncHandler{reconciler: reconciler}
}

// SyncResponse is the JSON response for /sync.
type SyncResponse struct {
	Mode             string    `json:"mode"`
	Started          time.Time `json:"started"`
	Duration         string    `json:"duration"`
	CitiesPushed     int       `json:"cities_pushed"`
	PlacesPushed     int       `json:"places_pushed"`
	CategoriesPushed int       `json:"categories_pushed"`
	AdsPushed        int       `json:"ads_pushed"`
	Skipped          int       `json:"skipped"`
	Pulled           int       `json:"pulled"`
	Errors           []string  `json:"errors,omitempty"`
	Aborted          string    `json:"aborted,omitempty"`
}

// Status returns the last reconciliation pass, or 204 before the first one.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	last, ok := h.reconciler.Last()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	rep := last.Report
	resp := SyncResponse{
		Mode:             rep.Mode.String(),
		Started:          rep.Started,
		Duration:         rep.Duration.String(),
		CitiesPushed:     rep.CitiesPushed,
		PlacesPushed:     rep.PlacesPushed,
		CategoriesPushed: rep.CategoriesPushed,
		AdsPushed:        rep.AdsPushed,
		Skipped:          rep.Skipped,
		Pulled:           rep.Pulled,
	}
	for _, err := range rep.Errors {
		resp.Errors = append(resp.Errors, err.Error())
	}
	if last.Err != nil {
		resp.Aborted = last.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
