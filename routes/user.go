package routes

import (
	"github.com/gorilla/mux"

	"deepessays.dev/deep-essays/handlers"
	"deepessays.dev/deep-essays/users"
)

func CreateUserRoutes(svc *users.Service, router *mux.Router) *mux.Router {
	router.HandleFunc("/me", handlers.Me()).Methods("GET")
	router.HandleFunc("/me/mode", handlers.GetVisibilityMode(svc)).Methods("GET")
	router.HandleFunc("/me/mode", handlers.SetVisibilityMode(svc)).Methods("PUT")

	return router
}
