package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"deepessays.dev/deep-essays/posts"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, posts.ErrInvalidSource):
		http.Error(w, "Could not resolve a video from that URL", http.StatusBadRequest)
	case errors.Is(err, posts.ErrInvalidMode):
		http.Error(w, "Unknown feed mode", http.StatusBadRequest)
	case errors.Is(err, posts.ErrNotOwner):
		http.Error(w, "Not the owner", http.StatusForbidden)
	case errors.Is(err, posts.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	default:
		http.Error(w, "Service unavailable", http.StatusInternalServerError)
		log.Printf("[HTTP] internal error: %v", err)
	}
}

// subjectFromVars builds the subject from route variables; routes with a
// replyId address the nested reply, all others the post itself.
func subjectFromVars(vars map[string]string) posts.Subject {
	if replyID, ok := vars["replyId"]; ok {
		return posts.ReplySubject(vars["postId"], replyID)
	}
	return posts.PostSubject(vars["postId"])
}

func CreateDraft(svc *posts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			SourceURL string `json:"source_url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.SourceURL == "" {
			http.Error(w, "source_url is required", http.StatusBadRequest)
			return
		}

		post, err := svc.CreateDraft(r.Context(), session.UserID, req.SourceURL)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, post)
	}
}

func GetPost(svc *posts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		post, err := svc.GetPost(r.Context(), mux.Vars(r)["postId"], session.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

func DeletePost(svc *posts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.DeletePost(r.Context(), mux.Vars(r)["postId"], session.UserID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Post deleted successfully",
		})
	}
}

// EditEssay overwrites the essay of a post or reply. The publish flag is
// always cleared by the edit; republishing is a separate, deliberate step.
func EditEssay(svc *posts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			Essay string `json:"essay"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		subj := subjectFromVars(mux.Vars(r))
		if err := svc.EditEssay(r.Context(), subj, session.UserID, req.Essay); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"essay":        req.Essay,
			"is_published": false,
		})
	}
}

func TogglePublish(svc *posts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		published, err := svc.TogglePublish(r.Context(), subjectFromVars(mux.Vars(r)), session.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"is_published": published})
	}
}

func ToggleLike(svc *posts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		result, err := svc.ToggleLike(r.Context(), subjectFromVars(mux.Vars(r)), session.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func CreateReply(svc *posts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			SourceURL string `json:"source_url"`
			Essay     string `json:"essay"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.SourceURL == "" {
			http.Error(w, "source_url is required", http.StatusBadRequest)
			return
		}

		reply, err := svc.CreateReply(r.Context(), mux.Vars(r)["postId"], session, req.SourceURL, req.Essay)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, reply)
	}
}

func ListReplies(svc *posts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		replies, err := svc.ListReplies(r.Context(), mux.Vars(r)["postId"], session.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, replies)
	}
}

func DeleteReply(svc *posts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		vars := mux.Vars(r)
		if err := svc.DeleteReply(r.Context(), vars["postId"], vars["replyId"], session.UserID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Reply deleted successfully",
		})
	}
}

func ListLikedPosts(svc *posts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := SessionFromContext(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		liked, err := svc.ListLikedPosts(r.Context(), session.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, liked)
	}
}
