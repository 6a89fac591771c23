// Package routes wires every HTTP endpoint to its controller.
package routes

import (
	"net/http"
	"time"

	"github.com/coldcutclub/storefront/app/controllers"
	"github.com/coldcutclub/storefront/app/models"
	"github.com/coldcutclub/storefront/app/repositories"
	"github.com/coldcutclub/storefront/app/services"
	"github.com/coldcutclub/storefront/config"
	"github.com/coldcutclub/storefront/pkg/database"
	"github.com/coldcutclub/storefront/pkg/metrics"
	"github.com/coldcutclub/storefront/pkg/middleware"
	"github.com/coldcutclub/storefront/pkg/rbac"
	"github.com/coldcutclub/storefront/pkg/reqid"
	"github.com/coldcutclub/storefront/pkg/response"
	"github.com/coldcutclub/storefront/pkg/router"
)

// Build assembles the full route table over the shared database handle.
func Build() *router.Router {
	db := database.DB

	productRepo := repositories.NewProductRepository(db)
	cartRepo := repositories.NewCartRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	userRepo := repositories.NewUserRepository(db)

	productSvc := services.NewProductService(productRepo)
	cartSvc := services.NewCartService(cartRepo, productRepo)
	checkoutSvc := services.NewCheckoutService(orderRepo, cartRepo, userRepo)
	orderSvc := services.NewOrderService(orderRepo, productRepo)
	authSvc := services.NewAuthService(userRepo)

	authCtl := controllers.NewAuthController(authSvc)
	productCtl := controllers.NewProductController(productSvc)
	cartCtl := controllers.NewCartController(cartSvc)
	checkoutCtl := controllers.NewCheckoutController(checkoutSvc, cartSvc)
	orderCtl := controllers.NewOrderController(orderSvc)
	adminCtl := controllers.NewAdminController(orderSvc, productSvc)

	r := router.New()
	r.Use(
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		metrics.Middleware(),
		middleware.CORS(middleware.DefaultCORSOptions()),
	)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})
	r.HandleFunc("/metrics", metrics.Handler().ServeHTTP)

	// The local disk's URLs point back at this server.
	if config.StorageDisk() == "local" {
		r.Static("/storage", config.StorageLocalRoot())
	}

	api := r.Group("/api")

	// Public shop surface.
	api.Get("/products", "products.index", productCtl.Index)
	api.Get("/products/{id}", "products.show", productCtl.Show)
	api.Get("/track/{tracking}", "orders.track", orderCtl.Track)
	api.Get("/track/{tracking}/stream", "orders.track.stream", orderCtl.TrackStream)

	// Auth endpoints, rate limited against stuffing.
	authGroup := api.Group("/auth", middleware.RateLimit(20, time.Minute))
	authGroup.Post("/register", "auth.register", authCtl.Register)
	authGroup.Post("/login", "auth.login", authCtl.Login)
	authGroup.Post("/forgot-password", "auth.forgot", authCtl.ForgotPassword)
	authGroup.Post("/reset-password", "auth.reset", authCtl.ResetPassword)
	authGroup.Post("/logout", "auth.logout", authCtl.Logout)

	// Signed-in customers.
	user := api.Group("", middleware.Auth)
	user.Get("/me", "me.show", authCtl.Me)
	user.Put("/me", "me.update", authCtl.UpdateProfile)

	user.Get("/cart", "cart.index", cartCtl.Index)
	user.Get("/cart/count", "cart.count", cartCtl.Count)
	user.Post("/cart", "cart.store", cartCtl.Store)
	user.Put("/cart/{id}", "cart.update", cartCtl.Update)
	user.Delete("/cart/{id}", "cart.destroy", cartCtl.Destroy)
	user.Delete("/cart", "cart.clear", cartCtl.Clear)

	user.Get("/checkout/quote", "checkout.quote", checkoutCtl.Quote)
	user.Post("/checkout", "checkout.store", checkoutCtl.Store)

	user.Get("/orders", "orders.index", orderCtl.Index)
	user.Get("/orders/{id}", "orders.show", orderCtl.Show)
	user.Post("/orders/{id}/cancel", "orders.cancel", orderCtl.Cancel)

	// Back office.
	admin := api.Group("/admin", middleware.Auth, rbac.HasRole(models.RoleAdmin))
	admin.Get("/dashboard", "admin.dashboard", adminCtl.Dashboard)
	admin.Get("/orders", "admin.orders", adminCtl.Orders)
	admin.Patch("/orders/{id}/status", "admin.orders.status", adminCtl.UpdateStatus)
	admin.Post("/products", "admin.products.store", adminCtl.CreateProduct)
	admin.Put("/products/{id}", "admin.products.update", adminCtl.UpdateProduct)
	admin.Delete("/products/{id}", "admin.products.destroy", adminCtl.DeleteProduct)
	admin.Post("/products/{id}/image", "admin.products.image", adminCtl.UploadProductImage)

	return r
}
