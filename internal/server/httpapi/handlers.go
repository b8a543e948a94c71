// Package httpapi is the REST transport of the persistence service: a chi
// router over the box and bait services with JSON bodies and an
// {"error": "..."} envelope for failures.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/melitton/internal/logging"
	"github.com/dmitrijs2005/melitton/internal/models"
	"github.com/dmitrijs2005/melitton/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type BoxService interface {
	List(ctx context.Context) ([]models.Box, error)
	Create(ctx context.Context, box models.Box) (models.Box, error)
	Update(ctx context.Context, id string, box models.Box) (models.Box, error)
	Delete(ctx context.Context, id string) error
	AddLog(ctx context.Context, boxID string, log models.ManagementLog) (models.ManagementLog, error)
}

type BaitService interface {
	List(ctx context.Context) ([]models.Bait, error)
	Create(ctx context.Context, bait models.Bait) (models.Bait, error)
	Update(ctx context.Context, id string, bait models.Bait) (models.Bait, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	boxes   BoxService
	baits   BaitService
	logger  logging.Logger
	metrics *metrics.Metrics
}

func NewHandler(boxes BoxService, baits BaitService, logger logging.Logger, m *metrics.Metrics) *Handler {
	return &Handler{boxes: boxes, baits: baits, logger: logger, metrics: m}
}

// Register mounts the box and bait endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/boxes", h.listBoxes)
	r.Post("/boxes", h.createBox)
	r.Put("/boxes/{id}", h.updateBox)
	r.Delete("/boxes/{id}", h.deleteBox)
	r.Post("/boxes/{id}/logs", h.addLog)

	r.Get("/baits", h.listBaits)
	r.Post("/baits", h.createBait)
	r.Put("/baits/{id}", h.updateBait)
	r.Delete("/baits/{id}", h.deleteBait)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), op+" failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
	}
	writeError(w, status, msg)
}

func (h *Handler) listBoxes(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.boxes.List(r.Context())
	if err != nil {
		h.fail(w, r, "list boxes", err)
		return
	}
	writeJSON(w, http.StatusOK, boxes)
}

func (h *Handler) createBox(w http.ResponseWriter, r *http.Request) {
	var in models.Box
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "create box", err)
		return
	}
	box, err := h.boxes.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create box", err)
		return
	}
	h.metrics.IncrementCreated("box")
	writeJSON(w, http.StatusCreated, box)
}

// updatedBox is a Box whose history is left out of the PUT response.
type updatedBox struct {
	models.Box
	ManagementHistory *struct{} `json:"managementHistory,omitempty"`
}

func (h *Handler) updateBox(w http.ResponseWriter, r *http.Request) {
	var in models.Box
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "update box", err)
		return
	}
	box, err := h.boxes.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, "update box", err)
		return
	}
	writeJSON(w, http.StatusOK, updatedBox{Box: box})
}

func (h *Handler) deleteBox(w http.ResponseWriter, r *http.Request) {
	if err := h.boxes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete box", err)
		return
	}
	h.metrics.IncrementDeleted("box")
	writeJSON(w, http.StatusOK, messageBody{Message: "Box deleted"})
}

func (h *Handler) addLog(w http.ResponseWriter, r *http.Request) {
	var in models.ManagementLog
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "add log", err)
		return
	}
	log, err := h.boxes.AddLog(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, "add log", err)
		return
	}
	h.metrics.IncrementCreated("log")
	writeJSON(w, http.StatusCreated, log)
}

func (h *Handler) listBaits(w http.ResponseWriter, r *http.Request) {
	baits, err := h.baits.List(r.Context())
	if err != nil {
		h.fail(w, r, "list baits", err)
		return
	}
	writeJSON(w, http.StatusOK, baits)
}

func (h *Handler) createBait(w http.ResponseWriter, r *http.Request) {
	var in models.Bait
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "create bait", err)
		return
	}
	bait, err := h.baits.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create bait", err)
		return
	}
	h.metrics.IncrementCreated("bait")
	writeJSON(w, http.StatusCreated, bait)
}

func (h *Handler) updateBait(w http.ResponseWriter, r *http.Request) {
	var in models.Bait
	if err := decodeJSON(r, &in); err != nil {
		h.fail(w, r, "update bait", err)
		return
	}
	bait, err := h.baits.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, "update bait", err)
		return
	}
	writeJSON(w, http.StatusOK, bait)
}

func (h *Handler) deleteBait(w http.ResponseWriter, r *http.Request) {
	if err := h.baits.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete bait", err)
		return
	}
	h.metrics.IncrementDeleted("bait")
	writeJSON(w, http.StatusOK, messageBody{Message: "Bait deleted"})
}
