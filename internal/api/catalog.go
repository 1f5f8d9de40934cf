package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/wardrive-core/internal/catalog"
)

// queryLimit reads ?limit. Missing or invalid values give 0 (repository default).
func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeCatalogDisabled(w)
		return
	}

	runs, err := s.catalog.ListRuns(r.Context(), queryLimit(r))
	if err != nil {
		s.logger.Error("listing runs failed", "error", err)
		writeInternalError(w, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []catalog.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeCatalogDisabled(w)
		return
	}

	run, err := s.catalog.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrRunNotFound) {
		writeNotFound(w, "run not found")
		return
	}
	if err != nil {
		s.logger.Error("getting run failed", "error", err)
		writeInternalError(w, "failed to get run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListNetworks(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeCatalogDisabled(w)
		return
	}

	q := r.URL.Query()
	networks, err := s.catalog.ListNetworks(r.Context(), catalog.NetworkFilter{
		SSID:       q.Get("ssid"),
		Encryption: q.Get("encryption"),
		Limit:      queryLimit(r),
	})
	if err != nil {
		s.logger.Error("listing networks failed", "error", err)
		writeInternalError(w, "failed to list networks")
		return
	}
	if networks == nil {
		networks = []catalog.Network{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"networks": networks, "count": len(networks)})
}

func (s *Server) handleGetNetwork(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeCatalogDisabled(w)
		return
	}

	network, err := s.catalog.GetNetwork(r.Context(), chi.URLParam(r, "bssid"))
	if errors.Is(err, catalog.ErrNetworkNotFound) {
		writeNotFound(w, "network not found")
		return
	}
	if err != nil {
		s.logger.Error("getting network failed", "error", err)
		writeInternalError(w, "failed to get network")
		return
	}
	writeJSON(w, http.StatusOK, network)
}
