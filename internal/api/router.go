package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"

	"recipebox/internal/logging"
)

// authRealm is the basic auth realm shown by browsers.
const authRealm = "Recipe Helper"

// RouterOptions configures cross-cutting middleware.
type RouterOptions struct {
	// Accounts enables basic auth on every route when non-empty.
	Accounts gin.Accounts

	// CORSOrigins lists the origins allowed to call the API.
	CORSOrigins []string
}

// NewRouter wires the handler into a gin engine.
func NewRouter(h *Handler, opts RouterOptions) (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.New(requestid.WithGenerator(uuid.NewString)))
	r.Use(RequestLogger())

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Location", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", h.Health)

	routes := r.Group("/")
	if len(opts.Accounts) > 0 {
		routes.Use(gin.BasicAuthForRealm(opts.Accounts, authRealm))
	}
	routes.GET("/recipes", h.ListRecipes)
	routes.POST("/recipes", h.CreateRecipe)
	routes.GET("/recipes/:id", h.GetRecipe)
	routes.PUT("/recipes/:id", h.UpdateRecipe)
	routes.DELETE("/recipes/:id", h.DeleteRecipe)
	routes.GET("/ingredients", h.ListIngredients)
	routes.POST("/ingredients", h.ResolveIngredients)
	routes.POST("/search", h.Search)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Code: codeNotFound, Message: "no such route"})
	})
	return r, nil
}

// RegisterValidators adds the notblank rule to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("notblank", validators.NotBlank)
}

// RequestLogger logs one line per request and makes the request ID
// available to loggers further down through the request context.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := requestid.Get(c)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), id))

		c.Next()

		status := c.Writer.Status()
		event := logging.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = logging.Error()
		case status >= http.StatusBadRequest:
			event = logging.Warn()
		}
		if len(c.Errors) > 0 {
			event = event.Strs("errors", c.Errors.Errors())
		}
		event.
			Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Str("ip", c.ClientIP()).
			Dur("latency", time.Since(start)).
			Msg("request completed")
	}
}
