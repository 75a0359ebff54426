package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"foodgram/internal/handlers"
	applog "foodgram/internal/log"
	"foodgram/internal/middleware"
)

type routerOptions struct {
	corsOrigins       []string
	rateLimitRequests int
	rateLimitWindow   time.Duration
	mediaDir          string
	mediaURL          string
}

func newRouter(h *handlers.Handler, opts routerOptions) http.Handler {
	ctx := context.Background()
	applog.Debug(ctx, "registering http routes")

	r := chi.NewRouter()
	r.Use(chimw.StripSlashes)
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)
	applog.Debug(ctx, "route registered", "path", "/healthz")
	r.Handle("/metrics", promhttp.Handler())
	applog.Debug(ctx, "route registered", "path", "/metrics")

	if opts.mediaDir != "" && opts.mediaURL != "" {
		prefix := strings.TrimSuffix(opts.mediaURL, "/") + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(opts.mediaDir))))
		applog.Debug(ctx, "route registered", "path", prefix, "static", true)
	}

	r.Route("/api", func(r chi.Router) {
		if opts.rateLimitRequests > 0 && opts.rateLimitWindow > 0 {
			r.Use(httprate.LimitByIP(opts.rateLimitRequests, opts.rateLimitWindow))
		}

		r.Post("/auth/login", h.Login)
		r.With(h.RequireAuthentication).Post("/auth/logout", h.Logout)

		r.Get("/tags", h.ListTags)
		r.Get("/tags/{id}", h.GetTag)
		r.Get("/ingredients", h.ListIngredients)
		r.Get("/ingredients/{id}", h.GetIngredient)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.Signup)
			r.Get("/", h.ListUsers)
			r.Get("/{id}", h.GetUser)
			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuthentication)
				r.Get("/me", h.Me)
				r.Delete("/me", h.DeleteMe)
				r.Get("/subscriptions", h.Subscriptions)
				r.Post("/{id}/subscribe", h.Subscribe)
				r.Delete("/{id}/subscribe", h.Unsubscribe)
			})
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", h.ListRecipes)
			r.Get("/{id}", h.GetRecipe)
			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuthentication)
				r.Post("/", h.CreateRecipe)
				r.Put("/{id}", h.UpdateRecipe)
				r.Patch("/{id}", h.UpdateRecipe)
				r.Delete("/{id}", h.DeleteRecipe)
				r.Post("/{id}/favorite", h.AddFavorite)
				r.Delete("/{id}/favorite", h.RemoveFavorite)
				r.Post("/{id}/shopping_cart", h.AddToShoppingCart)
				r.Delete("/{id}/shopping_cart", h.RemoveFromShoppingCart)
				r.Get("/download_shopping_cart", h.DownloadShoppingCart)
			})
		})
	})
	applog.Debug(ctx, "route registered", "path", "/api", "protected", "partial")

	return r
}
