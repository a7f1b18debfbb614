package app

import (
	"context"
	"net/http"
	"time"

	"github.com/mytheresa/catalog-service/app/api"
	"github.com/mytheresa/catalog-service/app/attributes"
	"github.com/mytheresa/catalog-service/app/catalog"
	"github.com/mytheresa/catalog-service/app/categories"
	"github.com/mytheresa/catalog-service/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Catalog    *catalog.CatalogHandler
	Categories *categories.CategoryHandler
	Attributes *attributes.AttributeHandler
	// Ping reports whether the database is reachable.
	Ping func(ctx context.Context) error
}

// NewHandlers wires the gorm repositories into the handlers.
func NewHandlers(db *gorm.DB) Handlers {
	productsRepo := models.NewProductsRepository(db)
	linesRepo := models.NewProductLinesRepository(db)
	attributesRepo := models.NewAttributesRepository(db)
	categoriesRepo := models.NewCategoriesRepository(db)

	return Handlers{
		Catalog:    catalog.NewCatalogHandler(productsRepo, linesRepo, attributesRepo),
		Categories: categories.NewCategoryHandler(categoriesRepo, productsRepo),
		Attributes: attributes.NewAttributeHandler(attributesRepo, attributesRepo),
		Ping: func(ctx context.Context) error {
			return models.Ping(ctx, db)
		},
	}
}

type RouterOptions struct {
	// Registry receives the HTTP collectors. Nil disables metrics.
	Registry    *prometheus.Registry
	MetricsPath string
}

// NewRouter registers the routes and wraps them in the request id, logging
// and metrics middleware.
func NewRouter(h Handlers, logger *zap.Logger, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /categories", h.Categories.HandleGetAll)
	mux.HandleFunc("POST /categories", h.Categories.HandleCreate)
	mux.HandleFunc("DELETE /categories/{slug}", h.Categories.HandleDelete)
	mux.HandleFunc("GET /categories/{slug}/products", h.Categories.HandleGetProducts)

	mux.HandleFunc("GET /products", h.Catalog.HandleGet)
	mux.HandleFunc("POST /products", h.Catalog.HandleCreateProduct)
	mux.HandleFunc("GET /products/{slug}", h.Catalog.HandleGetProduct)
	mux.HandleFunc("DELETE /products/{slug}", h.Catalog.HandleDeleteProduct)
	mux.HandleFunc("POST /products/{slug}/lines", h.Catalog.HandleCreateLine)
	mux.HandleFunc("POST /products/{slug}/attribute-values", h.Catalog.HandleAttachProductValue)
	mux.HandleFunc("POST /lines/{id}/images", h.Catalog.HandleCreateImage)
	mux.HandleFunc("POST /lines/{id}/attribute-values", h.Catalog.HandleAttachLineValue)

	mux.HandleFunc("GET /attributes", h.Attributes.HandleGetAll)
	mux.HandleFunc("POST /attributes", h.Attributes.HandleCreate)
	mux.HandleFunc("GET /attributes/{id}/values", h.Attributes.HandleGetValues)
	mux.HandleFunc("POST /attributes/{id}/values", h.Attributes.HandleCreateValue)
	mux.HandleFunc("GET /product-types", h.Attributes.HandleGetProductTypes)
	mux.HandleFunc("POST /product-types", h.Attributes.HandleCreateProductType)
	mux.HandleFunc("DELETE /product-types/{id}", h.Attributes.HandleDeleteProductType)

	mux.HandleFunc("GET /healthz", healthz(h.Ping))

	var handler http.Handler = mux
	if opts.Registry != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
		handler = api.NewMetrics(opts.Registry).Wrap(mux)
	}

	return api.WithRequestID(api.WithLogging(logger, handler))
}

func healthz(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				api.Logger(r.Context()).Warn("health check failed", zap.Error(err))
				api.ErrorResponseWithStatus(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		api.OKResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
