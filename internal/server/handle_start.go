package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/geoquest/internal/geoquest"
)

type StartRequest struct {
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
}

type StartResponse struct {
	Token string        `json:"token"`
	State StateResponse `json:"state"`
}

// handleStart begins a session. A request carrying a known player token
// restarts that player's quiz; otherwise a new player is registered.
func handleStart(logger *slog.Logger, players *Registry, v *Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartRequest
		if !v.decode(w, r, &req) {
			return
		}

		token, o := players.GetOrCreate(playerToken(r))

		view, err := o.Start(geoquest.Difficulty(req.Difficulty))
		if err != nil {
			writeQuizError(w, err)
			return
		}

		logger.Debug("quiz started", "player", token, "session_id", view.SessionID)
		writeJSON(w, http.StatusOK, StartResponse{
			Token: token,
			State: stateResponse(view),
		})
	}
}
