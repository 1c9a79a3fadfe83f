package routes

import (
	"github.com/gorilla/mux"

	"deepessays.dev/deep-essays/handlers"
	"deepessays.dev/deep-essays/posts"
)

func CreatePostRoutes(svc *posts.Service, router *mux.Router) *mux.Router {
	router.HandleFunc("/posts", handlers.CreateDraft(svc)).Methods("POST")
	router.HandleFunc("/posts/{postId}", handlers.GetPost(svc)).Methods("GET")
	router.HandleFunc("/posts/{postId}", handlers.DeletePost(svc)).Methods("DELETE")
	router.HandleFunc("/posts/{postId}/essay", handlers.EditEssay(svc)).Methods("PUT")
	router.HandleFunc("/posts/{postId}/publish", handlers.TogglePublish(svc)).Methods("POST")
	router.HandleFunc("/posts/{postId}/like", handlers.ToggleLike(svc)).Methods("POST")

	router.HandleFunc("/posts/{postId}/replies", handlers.CreateReply(svc)).Methods("POST")
	router.HandleFunc("/posts/{postId}/replies", handlers.ListReplies(svc)).Methods("GET")
	router.HandleFunc("/posts/{postId}/replies/{replyId}", handlers.DeleteReply(svc)).Methods("DELETE")
	router.HandleFunc("/posts/{postId}/replies/{replyId}/essay", handlers.EditEssay(svc)).Methods("PUT")
	router.HandleFunc("/posts/{postId}/replies/{replyId}/publish", handlers.TogglePublish(svc)).Methods("POST")
	router.HandleFunc("/posts/{postId}/replies/{replyId}/like", handlers.ToggleLike(svc)).Methods("POST")

	router.HandleFunc("/feed", handlers.GetFeed(svc)).Methods("GET")
	router.HandleFunc("/feed/live", handlers.LiveFeed(svc)).Methods("GET")
	router.HandleFunc("/likes", handlers.ListLikedPosts(svc)).Methods("GET")

	return router
}
