package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"tow-dispatch-service/internal/api/dto"
	"tow-dispatch-service/internal/ports"
	"tow-dispatch-service/internal/services"
)

type DispatchHandler struct {
	UnitRepo  ports.UnitRepository
	AssetRepo ports.AssetRepository
	Resolver  ports.LocationResolver
	Coupler   ports.CouplingGateway
	Cases     ports.CaseOpener
}

// Dispatch runs one assignment pass over the current unit and asset
// rosters. It coordinates repository access, the greedy matcher, and the
// side-effecting gateway calls, then reports the realized plan.
func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.DispatchRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil && err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	// 0 means "use the planner default".
	if req.DefaultCapacity < 0 || req.DefaultCapacity > 100 {
		writeError(w, r, http.StatusBadRequest, "default_capacity must be between 0 and 100")
		return
	}

	planner, err := services.NewPlanner(
		services.PlannerConfig{DefaultCapacity: req.DefaultCapacity},
		h.Resolver, h.Coupler, h.Cases,
	)
	if err != nil {
		log.Printf("build planner failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	result, err := services.DispatchCollections(r.Context(), planner, h.UnitRepo, h.AssetRepo)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		log.Printf("dispatch collections failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.DispatchResponse{
		Assignments: make([]dto.UnitAssignmentResponse, 0, len(result.Plan.Units)),
		Stats: dto.DispatchStatsResponse{
			Resolved:     result.Stats.Resolved,
			Unresolved:   result.Stats.Unresolved,
			Coupled:      result.Stats.Coupled,
			Rejected:     result.Stats.Rejected,
			CaseFailures: result.Stats.CaseFailures,
		},
		SkippedOwners: result.SkippedOwners,
	}
	for _, entry := range result.Plan.Units {
		res.Assignments = append(res.Assignments, dto.UnitAssignmentResponse{
			UnitID:   entry.UnitID,
			AssetIDs: entry.AssetIDs,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
