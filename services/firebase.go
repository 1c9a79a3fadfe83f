package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"deepessays.dev/deep-essays/posts"
)

var (
	authClient      *auth.Client
	firestoreClient *firestore.Client
	once            sync.Once
	initError       error
)

// InitFirebase initializes the Firebase app once and keeps its Auth and
// Firestore clients. credentialsPath may be empty when application-default
// credentials are available.
func InitFirebase(ctx context.Context, projectID, credentialsPath string) error {
	once.Do(func() {
		log.Printf("[FIREBASE] Initializing app for project %s", projectID)

		var opts []option.ClientOption
		if credentialsPath != "" {
			opts = append(opts, option.WithCredentialsFile(credentialsPath))
		}

		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
		if err != nil {
			initError = err
			log.Printf("[FIREBASE][ERROR] Failed to init app: %v", err)
			return
		}

		authClient, err = app.Auth(ctx)
		if err != nil {
			initError = err
			log.Printf("[FIREBASE][ERROR] Failed to get auth client: %v", err)
			return
		}

		firestoreClient, err = app.Firestore(ctx)
		if err != nil {
			initError = err
			log.Printf("[FIREBASE][ERROR] Failed to get firestore client: %v", err)
			return
		}

		log.Println("[FIREBASE] Auth and Firestore clients initialized successfully")
	})

	return initError
}

func AuthClient() (*auth.Client, error) {
	if authClient == nil {
		log.Printf("[FIREBASE][ERROR] Auth client is nil (initError=%v)", initError)
		return nil, initError
	}
	return authClient, nil
}

func FirestoreClient() (*firestore.Client, error) {
	if firestoreClient == nil {
		log.Printf("[FIREBASE][ERROR] Firestore client is nil (initError=%v)", initError)
		return nil, initError
	}
	return firestoreClient, nil
}

// FirebaseVerifier authenticates requests with Firebase ID tokens.
type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier() (*FirebaseVerifier, error) {
	client, err := AuthClient()
	if err != nil {
		return nil, err
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (posts.Session, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return posts.Session{}, fmt.Errorf("verify id token: %w", err)
	}
	email, _ := token.Claims["email"].(string)
	return posts.Session{UserID: token.UID, Email: email}, nil
}
