package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"deepessays.dev/deep-essays/models"
	"deepessays.dev/deep-essays/users"
)

func GetVisibilityMode(svc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		mode, err := svc.GetVisibilityMode(r.Context(), session.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"mode": string(mode)})
	}
}

func SetVisibilityMode(svc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			Mode string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		mode := models.VisibilityMode(req.Mode)
		if err := svc.SetVisibilityMode(r.Context(), session.UserID, mode); err != nil {
			if errors.Is(err, users.ErrInvalidMode) {
				http.Error(w, "mode must be public or private", http.StatusBadRequest)
				return
			}
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"mode": string(mode)})
	}
}

// Me echoes the authenticated session, handy for clients bootstrapping
// their UI.
func Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}
