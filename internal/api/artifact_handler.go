package api

import (
	"net/http"
)

// ListArtifacts возвращает метаданные всех артефактов, новые первыми.
// GET /api/v1/artifacts
func (h *Handler) ListArtifacts(w http.ResponseWriter, _ *http.Request) {
	records := h.artifacts.List()
	List(w, records, len(records))
}

// GetArtifact возвращает метаданные артефакта.
// GET /api/v1/artifacts/{id}
func (h *Handler) GetArtifact(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.artifacts.Get(r.PathValue("id"))
	if !ok {
		NotFound(w, "artifact not found")
		return
	}

	Success(w, rec)
}

// DownloadArtifact отдаёт содержимое файла артефакта.
// GET /api/v1/artifacts/{id}/download
func (h *Handler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.artifacts.Get(r.PathValue("id"))
	if !ok {
		NotFound(w, "artifact not found")
		return
	}

	// Имя файла прошло через SafeFilename, кавычки в нём невозможны.
	w.Header().Set("Content-Type", rec.Mime)
	w.Header().Set("Content-Disposition", `attachment; filename="`+rec.Filename+`"`)
	http.ServeFile(w, r, rec.Path)
}
