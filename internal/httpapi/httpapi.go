// Package httpapi exposes the board management REST surface: health
// checks and board lifecycle operations that do not need a live
// WebSocket session. Mutations made here flow through the same
// coordinator as the gateway, and deletions are announced to the
// affected board's room.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tablero-app/tablero/internal/board"
	"github.com/tablero-app/tablero/internal/room"
	"github.com/tablero-app/tablero/pkg/logger"
	"github.com/tablero-app/tablero/pkg/models"
	"github.com/tablero-app/tablero/pkg/protocol"
)

// API serves the /api routes.
type API struct {
	coord *board.Coordinator
	disp  *room.Dispatcher
	log   logger.Logger
}

func New(coord *board.Coordinator, disp *room.Dispatcher, log logger.Logger) *API {
	if log == nil {
		log = logger.Nop{}
	}
	return &API{coord: coord, disp: disp, log: log}
}

// Router builds the route table.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", a.handleHealth).Methods("GET")
	api.HandleFunc("/boards", a.handleListBoards).Methods("GET")
	api.HandleFunc("/boards", a.handleCreateBoard).Methods("POST")
	api.HandleFunc("/boards/{id}", a.handleGetBoard).Methods("GET")
	api.HandleFunc("/boards/{id}", a.handleDeleteBoard).Methods("DELETE")

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := a.coord.ListBoards(r.Context())
	if err != nil {
		a.respondCoordError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, boards)
}

// createBoardRequest is the POST /api/boards payload.
type createBoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (a *API) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	var req createBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	b, err := a.coord.CreateBoard(r.Context(), req.Name, req.Description)
	if err != nil {
		a.respondCoordError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

func (a *API) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseBoardID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid board ID")
		return
	}

	view, err := a.coord.FindBoard(r.Context(), id)
	if err != nil {
		a.respondCoordError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (a *API) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseBoardID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid board ID")
		return
	}

	if err := a.coord.DeleteBoard(r.Context(), id); err != nil {
		a.respondCoordError(w, err)
		return
	}
	// Tell live members the board is gone so they can drop it.
	a.disp.Publish(id, protocol.EventBoardDeleted, protocol.BoardDeletedEvent{BoardID: id})
	respondJSON(w, http.StatusNoContent, nil)
}

// respondCoordError maps coordinator errors onto HTTP status codes.
func (a *API) respondCoordError(w http.ResponseWriter, err error) {
	switch {
	case board.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case board.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case board.IsConflict(err):
		respondError(w, http.StatusConflict, err.Error())
	default:
		a.log.Error("request failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_, _ = w.Write(response)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
