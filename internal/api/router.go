package api

import (
	"net/http"
	"tow-dispatch-service/internal/api/handlers"
	"tow-dispatch-service/internal/ports"
)

// Deps groups the ports consumed by the API surface.
type Deps struct {
	UnitRepo  ports.UnitRepository
	AssetRepo ports.AssetRepository
	Resolver  ports.LocationResolver
	Coupler   ports.CouplingGateway
	Cases     ports.CaseOpener
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	assetHandler := &handlers.AssetHandler{Repo: deps.AssetRepo}
	unitHandler := &handlers.UnitHandler{Repo: deps.UnitRepo}
	dispatchHandler := &handlers.DispatchHandler{
		UnitRepo:  deps.UnitRepo,
		AssetRepo: deps.AssetRepo,
		Resolver:  deps.Resolver,
		Coupler:   deps.Coupler,
		Cases:     deps.Cases,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/assets", assetHandler.List)
	mux.HandleFunc("/units", unitHandler.List)
	mux.HandleFunc("/dispatch", dispatchHandler.Dispatch)

	return loggingMiddleware(mux)
}
