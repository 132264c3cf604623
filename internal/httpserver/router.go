package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront-api/internal/domain"
	"storefront-api/internal/logger"
	"storefront-api/internal/metrics"
	"storefront-api/internal/ratelimit"
	checkoutsvc "storefront-api/internal/service/checkout"
	usersvc "storefront-api/internal/service/user"
)

type userService interface {
	Signup(ctx context.Context, in usersvc.SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*usersvc.Session, error)
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
}

type productService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type cartService interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddLine(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	UpdateLine(ctx context.Context, userID, productID string, newQuantity int) error
}

type checkoutService interface {
	Checkout(ctx context.Context, in checkoutsvc.Input) (*checkoutsvc.Result, error)
}

type orderService interface {
	ListForUser(ctx context.Context, userID string) ([]domain.Order, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the router needs. Metrics and Limiter are optional.
type Deps struct {
	Logger      logrus.FieldLogger
	DB          pinger
	Users       userService
	Products    productService
	Cart        cartService
	Checkout    checkoutService
	Orders      orderService
	Metrics     *metrics.Metrics
	Limiter     *ratelimit.Limiter
	CorsOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(deps Deps) *gin.Engine {
	setupValidator()
	log := logger.OrDiscard(deps.Logger)

	router := gin.New()
	router.Use(requestID(), requestLogger(log), gin.Recovery())
	if deps.Metrics != nil {
		router.Use(observe(deps.Metrics))
	}
	router.Use(cors.New(corsConfig(deps.CorsOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.DB))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	if deps.Limiter != nil {
		api.Use(rateLimit(deps.Limiter))
	}

	users := api.Group("/users")
	users.POST("/signup", signupHandler(deps.Users))
	users.POST("/login", loginHandler(deps.Users))
	users.GET("/me", requireAuth(deps.Users), meHandler)

	products := api.Group("/products")
	products.GET("", listProductsHandler(deps.Products))
	products.GET("/:id", getProductHandler(deps.Products))

	authed := api.Group("", requireAuth(deps.Users))
	authed.GET("/cart", getCartHandler(deps.Cart))
	authed.POST("/cart/add", addToCartHandler(deps.Cart))
	authed.PATCH("/cart/update", updateCartHandler(deps.Cart))
	authed.POST("/checkout", checkoutHandler(deps.Checkout))
	authed.POST("/orders/list", listOrdersHandler(deps.Orders))

	// Paths used by earlier clients.
	legacy := api.Group("/orders", requireAuth(deps.Users))
	legacy.GET("/get-cart", getCartHandler(deps.Cart))
	legacy.POST("/add-product-to-cart", addToCartHandler(deps.Cart))
	legacy.PATCH("/update-cart-product", updateCartHandler(deps.Cart))
	legacy.POST("/purshace-cart", checkoutHandler(deps.Checkout))
	legacy.POST("/get-all-orders", listOrdersHandler(deps.Orders))

	router.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Can't find "+c.Request.URL.Path+" on this server")
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "Idempotency-Key", requestIDHeader)
	cfg.ExposeHeaders = []string{requestIDHeader}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
