package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/procflow/approval_flow_app/cmd/docs"
	portssvc "github.com/procflow/approval_flow_app/internal/core/ports/services"
	"github.com/procflow/approval_flow_app/internal/middleware"
	"github.com/procflow/approval_flow_app/pkg/config"
)

// stepTypeValidator backs the `steptype` binding tag. Step types are short
// lowercase letter codes ordered lexically ("a" < "b" < "c"); which codes a
// document actually has comes from its flow template.
func stepTypeValidator(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	if v == "" {
		return false
	}
	for _, r := range v {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// RegisterStepTypeValidation wires the steptype tag into gin's binding validator.
func RegisterStepTypeValidation() error {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("steptype", stepTypeValidator); err != nil {
			return fmt.Errorf("failed to register steptype validation: %w", err)
		}
	}
	return nil
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) error {

	if err := RegisterStepTypeValidation(); err != nil {
		return err
	}

	// Add root and health check routes
	r.GET("/", getHome)
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	rateLimit, err := newMutationRateLimit(cfg)
	if err != nil {
		return err
	}

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services, rateLimit)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
	return nil
}

// newMutationRateLimit builds the per-IP limiter applied to mutation routes.
func newMutationRateLimit(cfg *config.Config) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(cfg.MutationRateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid mutation rate limit %q: %w", cfg.MutationRateLimit, err)
	}
	return middleware.RateLimit(limiter.New(memory.NewStore(), rate)), nil
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	rateLimit gin.HandlerFunc,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	RegisterApprovalRoutes(v1, services, rateLimit)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
