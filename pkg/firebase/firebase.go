package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/unemployed-avengers/backend/pkg/logger"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and the clients built from it
type App struct {
	FirebaseApp *firebase.App
	AuthClient  *auth.Client
	Firestore   *firestore.Client
	Toolkit     *identitytoolkit.Service
}

// Options selects what InitFirebase builds
type Options struct {
	CredentialsPath string
	ProjectID       string
	APIKey          string
	WithFirestore   bool
}

// InitFirebase initializes the Firebase application, its auth client and,
// when asked, a Firestore client. Emulator hosts are honoured through the
// SDKs' own FIRESTORE_EMULATOR_HOST / FIREBASE_AUTH_EMULATOR_HOST variables,
// in which case no credentials file is required.
func InitFirebase(ctx context.Context, opts Options) (*App, error) {
	var clientOpts []option.ClientOption
	if opts.CredentialsPath != "" {
		if _, err := os.Stat(opts.CredentialsPath); err == nil {
			clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsPath))
		} else if !usingEmulators() {
			return nil, fmt.Errorf("Firebase credentials file not found at %s", opts.CredentialsPath)
		}
	}

	var conf *firebase.Config
	if opts.ProjectID != "" {
		conf = &firebase.Config{ProjectID: opts.ProjectID}
	}

	firebaseApp, err := firebase.NewApp(ctx, conf, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}
	app := &App{FirebaseApp: firebaseApp, AuthClient: authClient}

	if opts.WithFirestore {
		app.Firestore, err = firebaseApp.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting firestore client: %w", err)
		}
	}

	if opts.APIKey != "" {
		app.Toolkit, err = identitytoolkit.NewService(ctx, option.WithAPIKey(opts.APIKey))
		if err != nil {
			return nil, fmt.Errorf("error creating identity toolkit client: %w", err)
		}
	} else {
		logger.Log.Warn("FIREBASE_API_KEY not set, password sign-in is disabled")
	}

	logger.Log.WithField("firestore", opts.WithFirestore).Info("Firebase app and auth client initialized successfully!")
	return app, nil
}

// Close releases the Firestore client, if any
func (a *App) Close() {
	if a.Firestore != nil {
		if err := a.Firestore.Close(); err != nil {
			logger.Log.WithError(err).Error("Error closing Firestore client")
		}
	}
}

func usingEmulators() bool {
	return os.Getenv("FIRESTORE_EMULATOR_HOST") != "" || os.Getenv("FIREBASE_AUTH_EMULATOR_HOST") != ""
}
