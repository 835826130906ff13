package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/agencyportal/internal/app/controllers"
	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c *controllers.Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/ping", c.Health.Ping)

	api := router.Group("/api")
	api.GET("/health", c.Health.Health)

	// --- Auth routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/login", c.Auth.Login)
		auth.POST("/logout", c.Auth.Logout)
		auth.POST("/register", c.Auth.Register)
		auth.GET("/session", authMiddleware.SessionAuth(), c.Auth.Session)
	}

	// --- Realtime, any signed-in role ---
	api.GET("/events", authMiddleware.SessionAuth(), c.Events.Stream)
	api.GET("/ws", authMiddleware.SessionAuth(), c.Events.WebSocket)

	setupAdminRoutes(api.Group("/admin", authMiddleware.SessionAuth(), authMiddleware.RoleRequired(models.RoleAdmin)), c)
	setupAgencyRoutes(api.Group("/agency", authMiddleware.SessionAuth(), authMiddleware.RoleRequired(models.RoleAgency)), c)
}

func setupAdminRoutes(admin *gin.RouterGroup, c *controllers.Controllers) {
	users := admin.Group("/users")
	{
		users.GET("", c.Users.ListUsers)
		users.POST("", c.Users.CreateUser)
		users.GET("/:id", c.Users.GetUser)
		users.PUT("/:id", c.Users.UpdateUser)
		users.PATCH("/:id/status", c.Users.UpdateUserStatus)
		users.DELETE("/:id", c.Users.DeleteUser)
	}

	agencies := admin.Group("/agencies")
	{
		agencies.GET("", c.Agencies.ListAgencies)
		agencies.POST("", c.Agencies.CreateAgency)
		agencies.GET("/:id", c.Agencies.GetAgency)
		agencies.PUT("/:id", c.Agencies.UpdateAgency)
		agencies.PATCH("/:id/status", c.Agencies.UpdateAgencyStatus)
		agencies.DELETE("/:id", c.Agencies.DeleteAgency)
	}

	colleges := admin.Group("/colleges")
	{
		colleges.GET("", c.Catalog.ListColleges)
		colleges.POST("", c.Catalog.CreateCollege)
		colleges.GET("/:id", c.Catalog.GetCollege)
		colleges.PUT("/:id", c.Catalog.UpdateCollege)
		colleges.DELETE("/:id", c.Catalog.DeleteCollege)
		colleges.GET("/:id/courses", c.Catalog.ListCollegeCourses)
	}

	courses := admin.Group("/courses")
	{
		courses.GET("", c.Catalog.ListCourses)
		courses.POST("", c.Catalog.CreateCourse)
		courses.GET("/:id", c.Catalog.GetCourse)
		courses.PUT("/:id", c.Catalog.UpdateCourse)
		courses.DELETE("/:id", c.Catalog.DeleteCourse)
	}

	applications := admin.Group("/applications")
	{
		applications.GET("", c.Applications.ListApplications)
		applications.GET("/:id", c.Applications.GetApplication)
		applications.PUT("/:id", c.Applications.UpdateApplication)
		applications.DELETE("/:id", c.Applications.DeleteApplication)
		applications.PATCH("/:id/status", c.Applications.UpdateApplicationStatus)
		applications.GET("/:id/pdf", c.Applications.SummaryPDF)
		applications.GET("/:id/documents", c.Documents.ListApplicationDocuments)
	}

	documents := admin.Group("/documents")
	{
		documents.GET("", c.Documents.ListDocuments)
		documents.GET("/:id", c.Documents.GetDocument)
		documents.GET("/:id/download", c.Documents.DownloadDocument)
		documents.PATCH("/:id/status", c.Documents.UpdateDocumentStatus)
		documents.DELETE("/:id", c.Documents.DeleteDocument)
	}

	payments := admin.Group("/payments")
	{
		payments.GET("", c.Payments.ListPayments)
		payments.POST("/sync", c.Payments.SyncPayments)
		payments.GET("/summary", c.Payments.Summary)
		payments.GET("/:id", c.Payments.GetPayment)
		payments.PUT("/:id", c.Payments.UpdatePayment)
		payments.PATCH("/:id/status", c.Payments.UpdatePaymentStatus)
		payments.PATCH("/:id/lead-status", c.Payments.UpdateLeadStatus)
		payments.POST("/:id/documents/:type/request", c.Payments.RequestDocument)
		payments.GET("/:id/receipt", c.Payments.Receipt)
	}

	offline := admin.Group("/offline-payments")
	{
		offline.GET("", c.OfflinePayments.ListOfflinePayments)
		offline.GET("/:id", c.OfflinePayments.GetOfflinePayment)
		offline.PATCH("/:id/status", c.OfflinePayments.ReviewOfflinePayment)
		offline.GET("/:id/proof", c.OfflinePayments.DownloadProof)
		offline.GET("/:id/receipt", c.OfflinePayments.Receipt)
	}

	admin.GET("/settings", c.Settings.GetSettings)
	admin.PUT("/settings", c.Settings.UpdateSettings)
	admin.GET("/reports/:entity", c.Reports.Export)
}

func setupAgencyRoutes(agency *gin.RouterGroup, c *controllers.Controllers) {
	agency.GET("/profile", c.Agencies.GetProfile)
	agency.PUT("/profile", c.Agencies.UpdateProfile)

	colleges := agency.Group("/colleges")
	{
		colleges.GET("", c.Catalog.ListColleges)
		colleges.GET("/:id", c.Catalog.GetCollege)
		colleges.GET("/:id/courses", c.Catalog.ListCollegeCourses)
	}
	agency.GET("/courses", c.Catalog.ListCourses)
	agency.GET("/courses/:id", c.Catalog.GetCourse)

	applications := agency.Group("/applications")
	{
		applications.GET("", c.Applications.ListApplications)
		applications.POST("", c.Applications.CreateApplication)
		applications.GET("/:id", c.Applications.GetApplication)
		applications.PUT("/:id", c.Applications.UpdateApplication)
		applications.DELETE("/:id", c.Applications.DeleteApplication)
		applications.GET("/:id/pdf", c.Applications.SummaryPDF)
		applications.GET("/:id/documents", c.Documents.ListApplicationDocuments)
		applications.POST("/:id/documents", middleware.BodyLimit(c.UploadLimit), c.Documents.UploadDocument)
	}

	documents := agency.Group("/documents")
	{
		documents.GET("", c.Documents.ListDocuments)
		documents.GET("/:id", c.Documents.GetDocument)
		documents.GET("/:id/download", c.Documents.DownloadDocument)
		documents.DELETE("/:id", c.Documents.DeleteDocument)
	}

	payments := agency.Group("/payments")
	{
		payments.GET("", c.Payments.ListPayments)
		payments.GET("/summary", c.Payments.Summary)
		payments.GET("/:id", c.Payments.GetPayment)
		payments.PATCH("/:id/lead-status", c.Payments.UpdateLeadStatus)
		payments.GET("/:id/receipt", c.Payments.Receipt)
	}

	offline := agency.Group("/offline-payments")
	{
		offline.GET("", c.OfflinePayments.ListOfflinePayments)
		offline.POST("", middleware.BodyLimit(c.UploadLimit), c.OfflinePayments.SubmitOfflinePayment)
		offline.GET("/:id", c.OfflinePayments.GetOfflinePayment)
		offline.GET("/:id/proof", c.OfflinePayments.DownloadProof)
		offline.GET("/:id/receipt", c.OfflinePayments.Receipt)
	}

	agency.GET("/settings", c.Settings.GetAgencySettings)
	agency.GET("/reports/:entity", c.Reports.Export)
}
