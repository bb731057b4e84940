package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"lms/backend/config"
	"lms/backend/controllers"
	"lms/backend/identity"
	"lms/backend/middleware"
	"lms/backend/payments"
	"lms/backend/repository"
	"lms/backend/storage"
	"lms/backend/utils"
)

// Dependencies are the collaborators the handlers are built from. Redis may be nil;
// caching and rate limiting are then skipped.
type Dependencies struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Log       *utils.Logger
	Redis     *redis.Client
	Store     storage.Store
	Gateway   payments.Gateway
	Directory identity.Directory
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	cfg := deps.Cfg

	cache := repository.NewCourseCache(deps.Redis, cfg.CacheTTL, deps.Log)
	courses := repository.NewCourseRepository(deps.DB, cache)
	purchases := repository.NewPurchaseRepository(deps.DB, cache)
	users := repository.NewUserRepository(deps.DB)
	progress := repository.NewProgressRepository(deps.DB)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	educatorMiddleware := middleware.EducatorMiddleware()
	limiter := middleware.NewRateLimiter(deps.Redis, deps.Log)

	app.Get("/health", func(c *fiber.Ctx) error {
		return utils.OK(c, fiber.Map{"time": time.Now().UTC()})
	})

	if cfg.StorageDriver == "local" {
		app.Static(storage.MediaPrefix, cfg.MediaDir)
	}

	// Catalogue routes
	catalogController := controllers.NewCatalogController(courses)
	purchaseController := controllers.NewPurchaseController(courses, purchases, users, deps.Gateway, cfg, deps.Log)
	course := app.Group("/api/course")
	course.Get("/all", catalogController.GetAllCourses)
	course.Post("/purchase", authMiddleware,
		limiter.Limit("purchase", cfg.PurchaseRateLimit, cfg.PurchaseRateWindow),
		purchaseController.PurchaseCourse)
	course.Get("/:id", middleware.OptionalAuth(cfg), catalogController.GetCourse)

	// Educator routes
	authController := controllers.NewAuthController(deps.Directory, users, cfg, deps.Log)
	coursesController := controllers.NewCoursesController(courses, purchases, deps.Store, cfg, deps.Log)
	analyticsController := controllers.NewAnalyticsController(courses, purchases)
	educator := app.Group("/api/educator", authMiddleware)
	educator.Get("/update-role", authController.UpdateRoleToEducator)
	educator.Post("/add-course", educatorMiddleware, coursesController.AddCourse)
	educator.Get("/courses", educatorMiddleware, coursesController.GetEducatorCourses)
	educator.Get("/course/:id", educatorMiddleware, coursesController.GetCourseForEdit)
	educator.Put("/course/:id", educatorMiddleware, coursesController.UpdateCourse)
	educator.Delete("/course/:id", educatorMiddleware, coursesController.DeleteCourse)
	educator.Get("/dashboard", educatorMiddleware, analyticsController.GetDashboard)
	educator.Get("/enrolled-students", educatorMiddleware, analyticsController.GetEnrolledStudents)

	// User routes
	userController := controllers.NewUserController(users, courses)
	progressController := controllers.NewProgressController(progress, courses)
	ratingsController := controllers.NewRatingsController(courses)
	user := app.Group("/api/user", authMiddleware)
	user.Get("/data", userController.GetUserData)
	user.Get("/enrolled-courses", userController.GetEnrolledCourses)
	user.Get("/course/:id", userController.GetCourse)
	user.Post("/add-rating", ratingsController.AddRating)
	user.Post("/update-course-progress", progressController.UpdateCourseProgress)
	user.Post("/get-course-progress", progressController.GetCourseProgress)
	user.Get("/course-progress", progressController.GetCourseProgress)

	// Webhooks authenticate by signature, not by token
	webhooks := app.Group("/webhooks")
	webhooks.Post("/identity", authController.IdentityWebhook)
	webhooks.Post("/payments", purchaseController.PaymentWebhook)
}
