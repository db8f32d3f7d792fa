package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/platekit/cooksession/internal/domain"
)

type startReq struct {
	UserID   string `json:"userId"`
	RecipeID string `json:"recipeId"`
}

// sessionResp is the wire shape of a session.
type sessionResp struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"userId"`
	RecipeID           string     `json:"recipeId"`
	Status             string     `json:"status"`
	CurrentStepIndex   int        `json:"currentStepIndex"`
	StartedAt          time.Time  `json:"startedAt"`
	PausedAt           *time.Time `json:"pausedAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	TotalPausedSeconds int64      `json:"totalPausedSeconds"`
}

func toSessionResp(s *domain.CookingSession) sessionResp {
	return sessionResp{
		ID:                 s.ID,
		UserID:             s.UserID,
		RecipeID:           s.RecipeID,
		Status:             s.Status.String(),
		CurrentStepIndex:   s.CurrentStepIndex,
		StartedAt:          s.StartedAt,
		PausedAt:           s.PausedAt,
		CompletedAt:        s.CompletedAt,
		TotalPausedSeconds: s.TotalPausedSeconds,
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.RecipeID == "" {
		writeErr(w, r, http.StatusBadRequest, "userId and recipeId are required")
		return
	}

	session, err := s.engine.Start(r.Context(), req.UserID, req.RecipeID)
	if err != nil {
		s.writeEngineErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResp(session))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	session, err := s.engine.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeEngineErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResp(session))
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	session, err := s.engine.Pause(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeEngineErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResp(session))
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	session, err := s.engine.Resume(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeEngineErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResp(session))
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	session, err := s.engine.Advance(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeEngineErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResp(session))
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	session, err := s.engine.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeEngineErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResp(session))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeEngineErr maps engine failures onto HTTP statuses.
func (s *Server) writeEngineErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeErr(w, r, http.StatusNotFound, "session or recipe not found")
	case errors.Is(err, domain.ErrNoSteps):
		writeErr(w, r, http.StatusUnprocessableEntity, "recipe has no cooking steps")
	case errors.Is(err, domain.ErrInvalidState):
		writeErr(w, r, http.StatusConflict, "session state does not allow this operation")
	default:
		s.log.Error("http: %s %s: %v", r.Method, r.URL.Path, err)
		writeErr(w, r, http.StatusInternalServerError, "internal error")
	}
}
