package database

import (
	"context"
	"fmt"
	"log"
	"os"

	"deepessays.dev/deep-essays/services"
	"deepessays.dev/deep-essays/store"
)

// ConnectStore returns the document store the app runs against: Firestore
// normally, or the in-memory store when STORE=memory (credential-free
// local dev). InitFirebase must have run before the Firestore path.
func ConnectStore(ctx context.Context) (store.Store, error) {
	if os.Getenv("STORE") == "memory" {
		log.Println("[STORE] Using in-memory store (data is not persisted)")
		return store.NewMemory(), nil
	}

	client, err := services.FirestoreClient()
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return store.NewFirestore(client), nil
}
