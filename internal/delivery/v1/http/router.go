package http

import (
	"time"

	"github.com/DRSN-tech/pos-register/internal/usecase"
	"github.com/DRSN-tech/pos-register/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
)

type Router struct {
	router     *chi.Mux
	logger     logger.Logger
	rateLimit  int
	trustProxy bool
}

// NewRouter создает роутер. trustProxy включает разбор заголовков прокси;
// без него лимит считается по адресу TCP-соединения.
func NewRouter(router *chi.Mux, logger logger.Logger, rateLimit int, trustProxy bool) *Router {
	return &Router{router: router, logger: logger, rateLimit: rateLimit, trustProxy: trustProxy}
}

func (r *Router) Init(registerUC usecase.RegisterUC) {
	r.router.Use(middleware.RequestID)
	if r.trustProxy {
		r.router.Use(middleware.RealIP)
	}
	r.router.Use(middleware.Recoverer)
	r.router.Use(secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'",
	}).Handler)
	if r.rateLimit > 0 {
		limit := httprate.LimitByIP
		if r.trustProxy {
			limit = httprate.LimitByRealIP
		}
		r.router.Use(limit(r.rateLimit, time.Minute))
	}

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerRoutes(v1, NewRegisterHandler(registerUC, r.logger))
	})
}

func registerRoutes(router chi.Router, h *RegisterHandler) {
	router.Get("/register", h.getView)
	router.Post("/reset", h.resetAll)
	router.Post("/checkout", h.checkout)

	router.Route("/cart", func(cart chi.Router) {
		cart.Delete("/", h.clearCart)
		cart.Post("/items", h.addToCart)
	})

	router.Route("/products", func(pr chi.Router) {
		pr.Post("/", h.addProduct)
		pr.Delete("/{code}", h.removeProduct)
	})
}
