package handlers

import (
	"log"
	"net/http"
	"tow-dispatch-service/internal/api/dto"
	"tow-dispatch-service/internal/ports"
)

// AssetHandler exposes read-only pending-asset retrieval endpoints.
type AssetHandler struct {
	Repo ports.AssetRepository
}

func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	assets, err := h.Repo.ListPendingAssets(r.Context())
	if err != nil {
		log.Printf("list pending assets failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListAssetsResponse{
		Assets: make([]dto.AssetResponse, 0, len(assets)),
	}
	for _, a := range assets {
		res.Assets = append(res.Assets, dto.AssetResponse{
			OwnerID: a.OwnerID,
			AssetID: a.AssetID,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
