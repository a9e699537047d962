package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"net/netip"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/YoungLee-coder/coshub/auth"
	"github.com/YoungLee-coder/coshub/cos"
	"github.com/YoungLee-coder/coshub/settings"
)

// API holds the dependencies needed by the REST handlers.
type API struct {
	login          *auth.LoginFlow
	guard          *auth.Guard
	resolver       *settings.Resolver
	objects        cos.ObjectStore
	audit          *auditLogger
	trustedProxies []netip.Prefix
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for audit events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.audit = newAuditLogger(logger)
	}
}

// WithTrustedProxies configures CIDR ranges whose proxy headers are
// honored when extracting the client IP for login rate limiting.
func WithTrustedProxies(prefixes []netip.Prefix) Option {
	return func(a *API) {
		a.trustedProxies = prefixes
	}
}

// WithObjectStore attaches the bucket backend. When absent, the
// /cos routes respond 503.
func WithObjectStore(store cos.ObjectStore) Option {
	return func(a *API) {
		a.objects = store
	}
}

// New creates a new API instance.
func New(login *auth.LoginFlow, guard *auth.Guard, resolver *settings.Resolver, opts ...Option) *API {
	a := &API{
		login:    login,
		guard:    guard,
		resolver: resolver,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.audit == nil {
		a.audit = newAuditLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
	return a
}

// Router returns a chi.Router with all API routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/redoc",
	}, nil))

	r.Post("/auth/login", a.Login)
	r.Post("/auth/logout", a.Logout)
	r.Get("/auth/check", a.AuthCheck)

	r.With(a.AuthMiddleware).Get("/settings", a.GetSettings)
	r.With(a.AuthMiddleware).Put("/settings", a.UpdateSettings)

	// Bucket pass-through routes all require a session.
	r.Route("/cos", func(r chi.Router) {
		r.Use(a.AuthMiddleware)
		r.Get("/buckets", a.ListBuckets)
		r.Get("/objects", a.ListObjects)
		r.Delete("/objects", a.DeleteObjects)
		r.Post("/objects/rename", a.RenameObject)
		r.Post("/folders", a.CreateFolder)
		r.Get("/url", a.PresignedURL)
		r.Get("/cdn-domain", a.CDNDomain)
	})

	return r
}
