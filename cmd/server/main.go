package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"deepessays.dev/deep-essays/database"
	"deepessays.dev/deep-essays/handlers"
	"deepessays.dev/deep-essays/posts"
	"deepessays.dev/deep-essays/routes"
	"deepessays.dev/deep-essays/services"
	"deepessays.dev/deep-essays/users"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on the environment")
	}

	ctx := context.Background()

	devSecret := os.Getenv("AUTH_DEV_SECRET")
	memoryStore := os.Getenv("STORE") == "memory"

	// Firebase is only needed when something uses it: the Firestore store
	// or ID-token verification.
	if !memoryStore || devSecret == "" {
		projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
		if projectID == "" {
			log.Fatal("GOOGLE_CLOUD_PROJECT not set")
		}
		credPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
		if err := services.InitFirebase(ctx, projectID, credPath); err != nil {
			log.Fatal("Firebase init failed: ", err)
		}
	}

	st, err := database.ConnectStore(ctx)
	if err != nil {
		log.Fatal("Store connection failed: ", err)
	}
	defer st.Close()

	var verifier handlers.TokenVerifier
	if devSecret != "" {
		log.Println("[AUTH] AUTH_DEV_SECRET set, accepting dev tokens — do not use in production")
		verifier = handlers.DevVerifier{Secret: []byte(devSecret)}
	} else {
		verifier, err = services.NewFirebaseVerifier()
		if err != nil {
			log.Fatal("Auth verifier init failed: ", err)
		}
	}

	apiKey := os.Getenv("YOUTUBE_API_KEY")
	if apiKey == "" {
		log.Fatal("YOUTUBE_API_KEY not set")
	}
	resolver, err := services.NewYouTubeResolver(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		log.Fatal("YouTube resolver init failed: ", err)
	}

	postService := posts.NewService(st, resolver)
	userService := users.NewService(st)

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(handlers.AuthMiddleware(verifier))
	routes.CreatePostRoutes(postService, api)
	routes.CreateUserRoutes(userService, api)

	handler := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins([]string{"*"}),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(router)
	handler = gorillahandlers.LoggingHandler(os.Stdout, handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
		// Header timeout only: /feed/live holds connections open.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Println("Server running at", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed: ", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
