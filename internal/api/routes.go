package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sellerprep-backend-go/internal/core"
	"sellerprep-backend-go/internal/db"
	"sellerprep-backend-go/internal/middleware"
)

// SetupRoutes wires every endpoint to its handler. Global middleware
// (logging, recovery, CORS) is applied to the router in main before this is
// called.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	userService core.UserService,
	propertyService core.PropertyService,
	contentService core.ContentService,
	exportService core.ExportService,
	reconciler *core.Reconciler,
) {
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		logger.Fatal("Firebase Auth client is not initialized; routes cannot be secured")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient, logger)

	userHandler := NewUserHandler(userService, logger)
	propertyHandler := NewPropertyHandler(propertyService, exportService, logger)
	contentHandler := NewContentHandler(contentService, logger)
	paymentHandler := NewPaymentHandler(exportService, logger)
	billingHandler := NewBillingHandler(reconciler, logger)

	apiV1 := router.Group("/api/v1")
	{
		usersGroup := apiV1.Group("/users", authMW.VerifyToken())
		{
			usersGroup.POST("/initialize", userHandler.InitializeUserProfile)
			usersGroup.GET("/me", userHandler.GetCurrentUserProfile)
		}

		adminGroup := apiV1.Group("/admin", authMW.VerifyToken())
		{
			adminGroup.GET("/users", userHandler.ListUsers)
			adminGroup.POST("/make-admin", userHandler.MakeAdmin)
		}

		propertiesGroup := apiV1.Group("/properties", authMW.VerifyToken())
		{
			propertiesGroup.POST("", propertyHandler.CreateProperty)
			propertiesGroup.GET("", propertyHandler.ListProperties)
			propertiesGroup.GET("/:propertyId", propertyHandler.GetProperty)
			propertiesGroup.PUT("/:propertyId", propertyHandler.UpdateProperty)
			propertiesGroup.DELETE("/:propertyId", propertyHandler.DeleteProperty)
			propertiesGroup.GET("/:propertyId/export", propertyHandler.ExportProperty)
		}

		sectionsGroup := apiV1.Group("/sections", authMW.VerifyToken())
		{
			sectionsGroup.POST("", contentHandler.CreateSection)
			sectionsGroup.GET("", contentHandler.ListSections)
			sectionsGroup.DELETE("/:sectionId", contentHandler.DeleteSection)
		}

		documentsGroup := apiV1.Group("/documents", authMW.VerifyToken())
		{
			documentsGroup.POST("", contentHandler.CreateDocument)
			documentsGroup.GET("", contentHandler.ListDocuments)
			documentsGroup.DELETE("/:documentId", contentHandler.DeleteDocument)
		}

		imagesGroup := apiV1.Group("/images", authMW.VerifyToken())
		{
			imagesGroup.POST("", contentHandler.CreateImage)
			imagesGroup.GET("", contentHandler.ListImages)
			imagesGroup.DELETE("/:imageId", contentHandler.DeleteImage)
		}

		notesGroup := apiV1.Group("/notes", authMW.VerifyToken())
		{
			notesGroup.POST("", contentHandler.CreateNote)
			notesGroup.GET("", contentHandler.ListNotes)
			notesGroup.DELETE("/:noteId", contentHandler.DeleteNote)
		}

		paymentsGroup := apiV1.Group("/payments", authMW.VerifyToken())
		{
			paymentsGroup.POST("/create-intent", paymentHandler.CreatePaymentIntent)
			paymentsGroup.POST("/confirm", paymentHandler.ConfirmPayment)
			paymentsGroup.GET("/check-export-permission", paymentHandler.CheckExportPermission)
		}

		// Public: Stripe authenticates deliveries via signature, verified in
		// the reconciler.
		apiV1.POST("/billing/webhooks/stripe", billingHandler.HandleStripeWebhook)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	logger.Info("API routes configured under /api/v1")
}
