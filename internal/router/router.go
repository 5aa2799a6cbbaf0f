package router

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/unemployed-avengers/backend/internal/handlers"
	"github.com/anonto42/unemployed-avengers/backend/internal/identity"
	"github.com/anonto42/unemployed-avengers/backend/internal/metrics"
	"github.com/anonto42/unemployed-avengers/backend/internal/middleware"
	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"github.com/anonto42/unemployed-avengers/backend/internal/repositories"
	"github.com/anonto42/unemployed-avengers/backend/pkg/config"
	"github.com/anonto42/unemployed-avengers/backend/pkg/firebase"
	"github.com/anonto42/unemployed-avengers/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
)

// Deps carries everything the routes are built from
type Deps struct {
	Users    repositories.UserRepository
	Moods    repositories.MoodRepository
	Follows  repositories.FollowRepository
	Comments repositories.CommentRepository
	Identity identity.Provider
	Tokens   *middleware.TokenIssuer
	// FirebaseAuth is nil unless Firebase ID tokens are accepted
	FirebaseAuth *middleware.FirebaseTokenAuth
	EmailDomain  string
	Metrics      *metrics.Metrics
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, m *metrics.Metrics) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(middleware.RequestLogger(logger.Log))
	if m != nil {
		e.Use(m.Middleware())
	}
	logger.Log.Info("Global middleware configured.")
}

// BuildDeps picks the store and identity implementations the configuration asks for
func BuildDeps(ctx context.Context, cfg *config.Config, db *config.DB, fb *firebase.App, m *metrics.Metrics) (*Deps, error) {
	deps := &Deps{
		Tokens:      middleware.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour),
		EmailDomain: cfg.DummyEmailDomain,
		Metrics:     m,
	}

	switch cfg.StoreBackend {
	case config.StoreFirestore:
		if fb == nil || fb.Firestore == nil {
			return nil, fmt.Errorf("firestore backend selected but no Firestore client is available")
		}
		deps.Users = repositories.NewFirestoreUserRepository(fb.Firestore)
		deps.Moods = repositories.NewFirestoreMoodRepository(fb.Firestore)
		deps.Follows = repositories.NewFirestoreFollowRepository(fb.Firestore)
		deps.Comments = repositories.NewFirestoreCommentRepository(fb.Firestore)
	case config.StorePostgres, config.StoreSQLite:
		if err := MigrateSQL(db); err != nil {
			return nil, err
		}
		deps.Users = repositories.NewSQLUserRepository(db.SQL)
		deps.Moods = repositories.NewSQLMoodRepository(db.SQL)
		deps.Follows = repositories.NewSQLFollowRepository(db.SQL)
		deps.Comments = repositories.NewSQLCommentRepository(db.SQL)
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	if db.Mongo != nil {
		moods := repositories.NewMongoMoodRepository(db.Mongo.Database(cfg.MongoDatabase))
		if err := moods.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to create mood indexes: %w", err)
		}
		deps.Moods = moods
		logger.Log.WithField("database", cfg.MongoDatabase).Info("Mood events stored in MongoDB.")
	}

	switch cfg.IdentityProvider {
	case config.IdentityFirebase:
		if fb == nil {
			return nil, fmt.Errorf("firebase identity provider selected but Firebase is not initialized")
		}
		deps.Identity = identity.NewFirebaseProvider(fb.AuthClient, fb.Toolkit)
	case config.IdentityLocal:
		local := identity.NewLocalProvider(db.SQL, bcrypt.DefaultCost)
		if err := local.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate credentials table: %w", err)
		}
		deps.Identity = local
	default:
		return nil, fmt.Errorf("unknown IDENTITY_PROVIDER %q", cfg.IdentityProvider)
	}

	if fb != nil {
		deps.FirebaseAuth = middleware.NewFirebaseTokenAuth(fb.AuthClient, deps.Users)
	}

	logger.Log.WithFields(map[string]interface{}{
		"store":    cfg.StoreBackend,
		"identity": cfg.IdentityProvider,
	}).Info("Repositories and identity provider ready.")
	return deps, nil
}

// MigrateSQL creates or updates the SQL tables
func MigrateSQL(db *config.DB) error {
	if db == nil || db.SQL == nil {
		return fmt.Errorf("SQL backend selected but no SQL connection is open")
	}
	err := db.SQL.AutoMigrate(
		&models.User{},
		&models.MoodEvent{},
		&models.FollowRequest{},
		&models.Follow{},
		&models.Comment{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	logger.Log.Info("SQL auto-migrations completed for all models.")
	return nil
}

// SetupRoutes configures all application routes
func SetupRoutes(e *echo.Echo, deps *Deps) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Identity, deps.Tokens, deps.FirebaseAuth, deps.EmailDomain, deps.Metrics)
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Protected routes ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(deps.Tokens, deps.FirebaseAuth))

	userHandler := handlers.NewUserHandler(deps.Users, deps.Identity, deps.Tokens, deps.EmailDomain)
	userHandler.RegisterProfileRoutes(api)

	moodHandler := handlers.NewMoodHandler(deps.Moods, deps.Users, deps.Follows, deps.Comments, deps.Metrics)
	moodHandler.RegisterMoodRoutes(api)

	feedHandler := handlers.NewFeedHandler(deps.Moods, deps.Follows)
	feedHandler.RegisterFeedRoutes(api)

	followHandler := handlers.NewFollowHandler(deps.Follows, deps.Users, deps.Metrics)
	followHandler.RegisterFollowRoutes(api)

	commentHandler := handlers.NewCommentHandler(deps.Comments, deps.Moods, deps.Follows, deps.Metrics)
	commentHandler.RegisterCommentRoutes(api)

	logger.Log.Info("All routes configured.")
}
