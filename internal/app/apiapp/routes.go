package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/storefront/internal/config"
	authsvc "github.com/ivankudzin/storefront/internal/services/auth"
	catalogsvc "github.com/ivankudzin/storefront/internal/services/catalog"
	lifecyclesvc "github.com/ivankudzin/storefront/internal/services/lifecycle"
	productsvc "github.com/ivankudzin/storefront/internal/services/products"
	"github.com/ivankudzin/storefront/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService      *authsvc.Service
	CatalogService   *catalogsvc.Service
	LifecycleService *lifecyclesvc.Service
	ProductService   *productsvc.Service
	Logger           *zap.Logger
	Config           config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	healthHandler := handlers.NewHealthHandler()
	catalogHandler := handlers.NewCatalogHandler(deps.CatalogService)
	purchaseHandler := handlers.NewPurchaseHandler(deps.LifecycleService)
	productHandler := handlers.NewProductHandler(deps.ProductService)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	adminRoleMW := RequireRole("admin")

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	// Catalog reads stay public: the storefront renders them before anyone
	// logs in, and guests browse the same lists.
	r.Get("/products", catalogHandler.Products)
	r.Get("/products/{name}", catalogHandler.Product)

	r.With(authMW).Post("/purchases", purchaseHandler.Buy)

	r.Route("/admin", func(r chi.Router) {
		r.Use(authMW, adminRoleMW)
		r.Get("/purchases/pending", catalogHandler.Pending)
		r.Get("/purchases/confirmed", catalogHandler.Confirmed)
		r.Post("/purchases/{id}/accept", purchaseHandler.Accept)
		r.Post("/purchases/{id}/decline", purchaseHandler.Decline)
		r.Delete("/purchases/{id}", purchaseHandler.DeleteConfirmed)
		r.Post("/purchases/hidden/clear", purchaseHandler.ClearHidden)
		r.Post("/products", productHandler.Create)
		r.Delete("/products/{name}", productHandler.Delete)
	})
}
