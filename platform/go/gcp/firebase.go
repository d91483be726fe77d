package gcp

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// CredentialsPathEnv points at a service-account JSON file for local development.
// In GCP environments the application default credentials are used instead.
const CredentialsPathEnv = "FIREBASE_CONFIG"

// NewApp creates a Firebase App instance, optionally from an explicit credentials file.
func NewApp(ctx context.Context, pathToJSON *string) (app *firebase.App, err error) {
	if pathToJSON != nil {
		sa := option.WithCredentialsFile(*pathToJSON)
		app, err = firebase.NewApp(ctx, nil, sa)
	} else {
		app, err = firebase.NewApp(ctx, nil)
	}

	if err != nil {
		return nil, err
	}
	return
}

// InitFirebaseAuth initializes the Firebase App and returns an Auth client. The
// Auth client is only used server-side to verify ID tokens; session issuance
// happens through the Identity Toolkit REST surface on the client.
func InitFirebaseAuth(ctx context.Context) (*firebase.App, *firebaseauth.Client, error) {
	var credsPath *string
	if path, found := os.LookupEnv(CredentialsPathEnv); found && path != "" {
		credsPath = &path
	}

	firebaseApp, err := NewApp(ctx, credsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing firebase app [%w]", err)
	}

	fbAuth, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing firebase auth [%w]", err)
	}

	return firebaseApp, fbAuth, nil
}
