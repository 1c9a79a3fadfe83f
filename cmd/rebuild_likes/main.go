// Command rebuild_likes recounts every post's and reply's like markers and
// overwrites the denormalized likeCount with the authoritative value. Run
// it whenever counters are suspected to have drifted from the markers.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"deepessays.dev/deep-essays/database"
	"deepessays.dev/deep-essays/posts"
	"deepessays.dev/deep-essays/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on the environment")
	}

	ctx := context.Background()

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		log.Fatal("GOOGLE_CLOUD_PROJECT not set")
	}

	if err := services.InitFirebase(ctx, projectID, os.Getenv("FIREBASE_CREDENTIALS_PATH")); err != nil {
		log.Fatal("RebuildLikes: Firebase init failed: ", err)
	}

	st, err := database.ConnectStore(ctx)
	if err != nil {
		log.Fatal("RebuildLikes: store connection failed: ", err)
	}
	defer st.Close()

	log.Println("Running like-count rebuild job")
	repaired, err := posts.NewService(st, nil).RebuildAllLikeCounts(ctx)
	if err != nil {
		log.Fatalf("Rebuild failed after %d subjects: %v", repaired, err)
	}
	log.Printf("Like-count rebuild finished, %d subjects repaired", repaired)
}
