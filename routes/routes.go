package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Byte-Craftsman-Alpha/Paranox/config"
	"github.com/Byte-Craftsman-Alpha/Paranox/handlers"
	"github.com/Byte-Craftsman-Alpha/Paranox/metrics"
	"github.com/Byte-Craftsman-Alpha/Paranox/middleware"
	"github.com/Byte-Craftsman-Alpha/Paranox/models"
	"github.com/Byte-Craftsman-Alpha/Paranox/services"
)

func SetupRoutes(router *gin.Engine, svcs *services.Services, cfg *config.Config, m *metrics.Collector, gatherer prometheus.Gatherer, log *zap.Logger) {
	// Initialize handlers
	profileHandler := handlers.NewProfileHandler(svcs.Profiles, log)
	directoryHandler := handlers.NewDirectoryHandler(svcs.Directory, log)
	relationshipHandler := handlers.NewRelationshipHandler(svcs.Links, svcs.Grants, log)
	recordHandler := handlers.NewMedicalRecordHandler(svcs.MedicalRecords, svcs.AccessLogs, cfg.Server.MaxUploadBytes, log)
	appointmentHandler := handlers.NewAppointmentHandler(svcs.Appointments, cfg.App.Location(), log)
	doctorHandler := handlers.NewDoctorHandler(svcs.Doctors, svcs.Organizations, log)
	patientHandler := handlers.NewPatientProfileHandler(svcs.PatientProfiles, log)

	router.Use(middleware.RequestID(), middleware.Recovery(log), middleware.RequestLogger(log))
	if m != nil {
		router.Use(middleware.Metrics(m))
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"success": true,
			"message": "Server is running",
		})
	})
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimit(cfg.RateLimit, m))
	{
		// Public routes
		v1.GET("/doctors", doctorHandler.GetDoctors)
		v1.GET("/organizations", doctorHandler.GetOrganizations)

		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(cfg, log), middleware.ActorMiddleware(svcs.Profiles, log))
		{
			// Creating the profile is the one call allowed before a role exists.
			authed.POST("/profile", profileHandler.CreateProfile)
			authed.GET("/profile", profileHandler.GetProfile)
		}

		protected := authed.Group("")
		protected.Use(middleware.RequireProfile())
		{
			protected.PUT("/profile", profileHandler.UpdateProfile)
			protected.GET("/organizations/accounts", doctorHandler.GetOrganizationAccounts)

			patients := protected.Group("/patients")
			patients.Use(middleware.RoleMiddleware(models.RoleDoctor, models.RoleHealthcareOrganization))
			{
				patients.GET("", directoryHandler.ListPatients)
				patients.POST("", directoryHandler.CreatePatient)
				patients.PUT("/:id", directoryHandler.UpdatePatient)
				patients.DELETE("/:id", directoryHandler.DeletePatient)
			}

			links := protected.Group("/links")
			{
				links.GET("", relationshipHandler.ListLinks)
				links.POST("", middleware.RoleMiddleware(models.RoleDoctor, models.RoleHealthcareOrganization), relationshipHandler.RequestLink)
				links.POST("/:id/approve", middleware.RoleMiddleware(models.RolePatient), relationshipHandler.ApproveLink)
				links.POST("/:id/discharge", middleware.RoleMiddleware(models.RoleDoctor, models.RoleHealthcareOrganization), relationshipHandler.DischargeLink)
			}

			grants := protected.Group("/grants")
			{
				grants.GET("", relationshipHandler.ListGrants)
				grants.POST("", middleware.RoleMiddleware(models.RolePatient), relationshipHandler.GrantAccess)
				grants.POST("/:id/revoke", middleware.RoleMiddleware(models.RolePatient), relationshipHandler.RevokeAccess)
			}

			medical := protected.Group("/medical-records")
			{
				medical.GET("", recordHandler.GetHistory)
				medical.POST("", recordHandler.CreateRecord)
				medical.GET("/:id/attachment", recordHandler.GetAttachment)
			}
			protected.GET("/access-logs", middleware.RoleMiddleware(models.RolePatient), recordHandler.GetAccessLogs)

			appointments := protected.Group("/appointments")
			{
				appointments.GET("", appointmentHandler.ListAppointments)
				appointments.POST("", appointmentHandler.CreateAppointment)
				appointments.GET("/:id", appointmentHandler.GetAppointment)
				appointments.PATCH("/:id/status", appointmentHandler.UpdateStatus)
			}

			doctor := protected.Group("/doctor")
			doctor.Use(middleware.RoleMiddleware(models.RoleDoctor))
			{
				doctor.GET("/profile", doctorHandler.GetProfile)
				doctor.PUT("/profile", doctorHandler.UpdateProfile)
				doctor.GET("/academic-records", doctorHandler.GetAcademicRecords)
				doctor.POST("/academic-records", doctorHandler.AddAcademicRecord)
			}

			patient := protected.Group("/patient")
			{
				patient.GET("/profile", patientHandler.GetProfile)
				patient.PUT("/profile", middleware.RoleMiddleware(models.RolePatient), patientHandler.SaveProfile)
			}
		}
	}
}
