// VillageVitals | 2026
// handler.go

package schema

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/villagevitals/backend/internal/core"
)

type Handler struct {
	db *sqlx.DB
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/db/init", h.InitDB)
}

func (h *Handler) InitDB(w http.ResponseWriter, r *http.Request) {
	if err := Initialize(r.Context(), h.db); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]string{
		"message": "Database tables initialized successfully",
	})
}
