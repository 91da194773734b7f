package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/notepad/internal/auth"
	"github.com/dukerupert/notepad/internal/service"
)

type NoteHandler struct {
	svc    *service.NoteService
	logger *slog.Logger
}

func NewNoteHandler(svc *service.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{svc: svc, logger: logger}
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.NoteInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	note, err := h.svc.Create(r.Context(), auth.UserID(r.Context()), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, noteID := auth.UserID(r.Context()), r.PathValue("id")

	var patch service.NotePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		// A non-owner hears about ownership, not about the body.
		if ownErr := h.svc.CheckOwnership(r.Context(), ownerID, noteID); ownErr != nil {
			err = ownErr
		}
		writeError(w, r, h.logger, err)
		return
	}

	note, err := h.svc.Update(r.Context(), ownerID, noteID, patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), auth.UserID(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeMessage(w, http.StatusOK, "Note removed")
}
