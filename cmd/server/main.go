package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"sellerprep-backend-go/internal/api"
	"sellerprep-backend-go/internal/billing"
	"sellerprep-backend-go/internal/config"
	"sellerprep-backend-go/internal/core"
	"sellerprep-backend-go/internal/db"
	"sellerprep-backend-go/internal/middleware"
	"sellerprep-backend-go/internal/notify"
	"sellerprep-backend-go/internal/render"
	"sellerprep-backend-go/internal/storage"
)

func main() {
	// Local development convenience; a missing .env file is fine.
	_ = godotenv.Load()

	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load application configuration: %v", err)
	}

	var zapLogger *zap.Logger
	if strings.EqualFold(appConfig.GinMode, "release") {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("configuration loaded", zap.String("ginMode", appConfig.GinMode))

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()
	if err := db.InitFirestore(initCtx, appConfig); err != nil {
		zapLogger.Fatal("failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	firestoreClient := db.GetFirestoreClient()
	if firestoreClient == nil || db.GetFirebaseAuthClient() == nil {
		zapLogger.Fatal("Firestore or Firebase Auth client is nil after initialization")
	}
	zapLogger.Info("Firebase Admin SDK initialized")

	blobStore, err := storage.NewGCSBlobStore(initCtx, appConfig.StorageBucket, storageOptions(appConfig)...)
	if err != nil {
		zapLogger.Fatal("failed to initialize blob storage", zap.Error(err))
	}
	zapLogger.Info("blob storage initialized", zap.String("bucket", appConfig.StorageBucket))

	stripeProvider, err := billing.NewStripeProvider(appConfig.StripeSecretKey, appConfig.StripeWebhookSecret)
	if err != nil {
		zapLogger.Fatal("failed to initialize Stripe provider", zap.Error(err))
	}

	var notifier notify.Notifier
	if appConfig.SMTPHost != "" {
		notifier, err = notify.NewSMTPNotifier(appConfig, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed to initialize SMTP notifier", zap.Error(err))
		}
		zapLogger.Info("SMTP notifier enabled", zap.String("host", appConfig.SMTPHost))
	} else {
		notifier = notify.NewLogNotifier(zapLogger)
		zapLogger.Info("SMTP not configured, notifications run in log-only mode")
	}

	// Repositories
	userRepo := db.NewFirestoreUserRepository(firestoreClient)
	propertyRepo := db.NewFirestorePropertyRepository(firestoreClient)
	sectionRepo := db.NewFirestoreSectionRepository(firestoreClient)
	documentRepo := db.NewFirestoreDocumentRepository(firestoreClient)
	imageRepo := db.NewFirestoreImageRepository(firestoreClient)
	noteRepo := db.NewFirestoreNoteRepository(firestoreClient)
	paymentRepo := db.NewFirestorePaymentRepository(firestoreClient)
	auditRepo := db.NewFirestoreAuditRepository(firestoreClient)

	// Core services
	auditService, err := core.NewAuditService(auditRepo, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize audit service", zap.Error(err))
	}
	userService, err := core.NewUserService(userRepo, auditService, notifier, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize user service", zap.Error(err))
	}
	entitlementService, err := core.NewEntitlementService(userRepo, paymentRepo, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize entitlement service", zap.Error(err))
	}
	propertyService, err := core.NewPropertyService(propertyRepo, sectionRepo, documentRepo, imageRepo, noteRepo, blobStore, auditService, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize property service", zap.Error(err))
	}
	contentService, err := core.NewContentService(propertyRepo, sectionRepo, documentRepo, imageRepo, noteRepo, blobStore, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize content service", zap.Error(err))
	}
	exportService, err := core.NewExportService(
		userService, entitlementService,
		propertyRepo, sectionRepo, documentRepo, imageRepo, noteRepo, paymentRepo, userRepo,
		stripeProvider, render.NewPDFRenderer(), auditService, notifier, zapLogger,
	)
	if err != nil {
		zapLogger.Fatal("failed to initialize export service", zap.Error(err))
	}
	reconciler, err := core.NewReconciler(stripeProvider, userRepo, notifier, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize billing reconciler", zap.Error(err))
	}
	zapLogger.Info("core services initialized")

	if strings.EqualFold(appConfig.GinMode, "release") {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))

	api.SetupRoutes(router, zapLogger, userService, propertyService, contentService, exportService, reconciler)

	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		zapLogger.Info("starting HTTP server", zap.String("address", serverAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zapLogger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	if err := firestoreClient.Close(); err != nil {
		zapLogger.Error("failed to close Firestore client", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// storageOptions mirrors the credential resolution used for the Firebase
// Admin SDK so both GCP clients authenticate the same way.
func storageOptions(appConfig *config.Config) []option.ClientOption {
	if appConfig.GoogleApplicationCredentials != "" {
		return []option.ClientOption{option.WithCredentialsFile(appConfig.GoogleApplicationCredentials)}
	}
	if appConfig.FirebaseServiceAccountJSONBase64 != "" {
		if decoded, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64); err == nil {
			return []option.ClientOption{option.WithCredentialsJSON(decoded)}
		}
	}
	// Application Default Credentials.
	return nil
}
