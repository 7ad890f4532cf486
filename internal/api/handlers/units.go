package handlers

import (
	"log"
	"net/http"
	"tow-dispatch-service/internal/api/dto"
	"tow-dispatch-service/internal/ports"
)

// UnitHandler exposes read-only tow-unit retrieval endpoints.
type UnitHandler struct {
	Repo ports.UnitRepository
}

func (h *UnitHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	units, err := h.Repo.ListUnits(r.Context())
	if err != nil {
		log.Printf("list units failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListUnitsResponse{
		Units: make([]dto.UnitResponse, 0, len(units)),
	}
	for _, u := range units {
		res.Units = append(res.Units, dto.UnitResponse{
			UnitID:   u.UnitID,
			Lat:      u.Location.Lat,
			Lon:      u.Location.Lon,
			Capacity: u.Capacity,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
