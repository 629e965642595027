package http

import (
	"net/http"

	"bikerental-backend/internal/domain"
)

type bikeStatusRequest struct {
	Status domain.BikeStatus `json:"status"`
}

func (h *Handler) ListBikes(w http.ResponseWriter, r *http.Request) {
	bikes, err := h.bikes.ListBikes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bikes": bikes})
}

func (h *Handler) AddBike(w http.ResponseWriter, r *http.Request) {
	var bike domain.Bike
	if err := decode(r, &bike); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.bikes.AddBike(r.Context(), caller(r), &bike); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bike)
}

func (h *Handler) SetBikeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req bikeStatusRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.bikes.SetBikeStatus(r.Context(), caller(r), id, req.Status); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	notes, total, err := h.notes.GetNotifications(r.Context(), caller(r), page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notes, "total": total})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.notes.MarkAsRead(r.Context(), caller(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
