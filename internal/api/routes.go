package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Plans
	mux.Handle("GET /api/v1/plans", chain(http.HandlerFunc(h.ListPlans)))
	mux.Handle("POST /api/v1/plans", chain(http.HandlerFunc(h.SubmitPlan)))
	mux.Handle("POST /api/v1/plans/validate", chain(http.HandlerFunc(h.ValidatePlan)))
	mux.Handle("POST /api/v1/plans/generate", chain(http.HandlerFunc(h.GeneratePlan)))
	mux.Handle("GET /api/v1/plans/{id}", chain(http.HandlerFunc(h.GetPlan)))

	// Execution: SSE-стрим событий прогона
	mux.Handle("POST /api/v1/plans/{id}/execute", chain(http.HandlerFunc(h.ExecutePlan)))

	// Artifacts
	mux.Handle("GET /api/v1/artifacts", chain(http.HandlerFunc(h.ListArtifacts)))
	mux.Handle("GET /api/v1/artifacts/{id}", chain(http.HandlerFunc(h.GetArtifact)))
	mux.Handle("GET /api/v1/artifacts/{id}/download", chain(http.HandlerFunc(h.DownloadArtifact)))
}
