package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dockwise/scheduler/internal/audit"
	"github.com/dockwise/scheduler/internal/capacity"
	"github.com/dockwise/scheduler/internal/config"
	"github.com/dockwise/scheduler/internal/datelock"
	"github.com/dockwise/scheduler/internal/estimator"
	"github.com/dockwise/scheduler/internal/handlers"
	infraRepo "github.com/dockwise/scheduler/internal/infra/repository"
	"github.com/dockwise/scheduler/internal/middleware"
	"github.com/dockwise/scheduler/internal/rules"
	"github.com/dockwise/scheduler/internal/timezone"
	ucBooking "github.com/dockwise/scheduler/internal/usecase/booking"
	ucCalibration "github.com/dockwise/scheduler/internal/usecase/calibration"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	loc := timezone.Location(cfg.Timezone)

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	repo := infraRepo.NewSchedulerGormRepository(db, cfg.DBTimeout)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	locker, err := datelock.New(cfg.RedisURL)
	if err != nil {
		log.Printf("redis unavailable (%v), using in-process lock", err)
		locker = datelock.NewLocalLocker()
	}

	coeffStore := estimator.NewStore(repo)
	est := estimator.New(coeffStore)
	ruleStore := rules.NewStore(repo)

	resolver := capacity.NewResolver(repo, loc)
	adjuster := capacity.NewQuickAdjuster(repo, resolver, loc)

	// ======================================================
	// USE CASES
	// ======================================================
	bookUC := ucBooking.NewBook(repo, est, ruleStore, locker, auditDispatcher, loc)
	rescheduleUC := ucBooking.NewReschedule(repo, ruleStore, locker, auditDispatcher, loc)
	cancelUC := ucBooking.NewCancel(repo, locker, auditDispatcher, loc)
	reactivateUC := ucBooking.NewReactivate(repo, locker, auditDispatcher, loc)
	gateUC := ucBooking.NewGateActions(repo, auditDispatcher)
	suggestUC := ucBooking.NewSuggest(repo, ruleStore, loc)

	calculateUC := ucCalibration.NewCalculate(repo, coeffStore, auditDispatcher)
	applyUC := ucCalibration.NewApply(repo, coeffStore, auditDispatcher)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	appointmentHandler := handlers.NewAppointmentHandler(
		bookUC, rescheduleUC, cancelUC, reactivateUC, gateUC, suggestUC, repo, loc,
	)
	capacityHandler := handlers.NewCapacityHandler(resolver, adjuster, locker, loc)
	slotHandler := handlers.NewSlotHandler(db, loc)
	dockHandler := handlers.NewDockHandler(db, loc)
	rulesHandler := handlers.NewRulesHandler(ruleStore)
	calibrationHandler := handlers.NewCalibrationHandler(db, calculateUC, applyUC, coeffStore)
	providerHandler := handlers.NewProviderHandler(db)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/register", authHandler.Register)
		api.GET("/appointments/confirm/:token", appointmentHandler.Confirm)

		// ------------------------------
		// PRIVATE
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", authHandler.Me)

			// Appointments
			write := secured.Group("/")
			write.Use(middleware.RequireRole(middleware.RoleAdmin, middleware.RolePlanner))
			{
				write.POST("/appointments", appointmentHandler.Create)
				write.PUT("/appointments/:id/reschedule", appointmentHandler.Reschedule)
				write.POST("/appointments/:id/cancel", appointmentHandler.Cancel)
				write.POST("/appointments/:id/reactivate", appointmentHandler.Reactivate)
				write.POST("/appointments/:id/check-in", appointmentHandler.CheckIn)
				write.POST("/appointments/:id/check-out", appointmentHandler.CheckOut)
				write.POST("/appointments/:id/undo-check-in", appointmentHandler.UndoCheckIn)
			}
			secured.GET("/appointments", appointmentHandler.List)
			secured.GET("/appointments/suggest", appointmentHandler.Suggest)
			secured.GET("/appointments/:id", appointmentHandler.Get)

			// Capacity
			secured.GET("/capacity/day/:date", capacityHandler.Day)
			secured.GET("/capacity/week/:date", capacityHandler.Week)
			secured.GET("/capacity/resolve/:date", capacityHandler.Resolve)
			secured.GET("/capacity/utilization/:date", capacityHandler.Utilization)
			write.POST("/capacity/quick-adjust", capacityHandler.QuickAdjust)

			// Providers
			secured.GET("/providers", providerHandler.List)
			secured.GET("/providers/:id", providerHandler.Get)
			write.POST("/providers", providerHandler.Create)
			write.PUT("/providers/:id", providerHandler.Update)

			// Admin configuration
			admin := secured.Group("/")
			admin.Use(middleware.RequireRole(middleware.RoleAdmin))
			{
				admin.GET("/slots/templates", slotHandler.ListTemplates)
				admin.POST("/slots/templates", slotHandler.CreateTemplate)
				admin.PUT("/slots/templates/:id", slotHandler.UpdateTemplate)
				admin.DELETE("/slots/templates/:id", slotHandler.DeleteTemplate)

				admin.GET("/slots/overrides", slotHandler.ListOverrides)
				admin.POST("/slots/overrides", slotHandler.CreateOverride)
				admin.DELETE("/slots/overrides/:id", slotHandler.DeleteOverride)

				admin.GET("/docks", dockHandler.List)
				admin.POST("/docks", dockHandler.Create)
				admin.PUT("/docks/:id", dockHandler.Update)
				admin.PUT("/docks/:id/availability", dockHandler.SetAvailability)
				admin.POST("/docks/:id/overrides", dockHandler.CreateOverride)
				admin.DELETE("/docks/overrides/:id", dockHandler.DeleteOverride)

				admin.GET("/rules", rulesHandler.Get)
				admin.PATCH("/rules", rulesHandler.Patch)

				admin.POST("/calibration/calculate", calibrationHandler.Calculate)
				admin.POST("/calibration/:id/apply", calibrationHandler.Apply)
				admin.GET("/calibration", calibrationHandler.List)
				admin.GET("/calibration/coefficients", calibrationHandler.Coefficients)

				admin.GET("/audit-logs", auditLogsHandler.List)
			}
		}
	}
}
