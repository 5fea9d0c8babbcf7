package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	accountctrl "foodhub/internal/account/controller"
	"foodhub/internal/auth"
	"foodhub/internal/domain"
	"foodhub/internal/httpx"
	menuctrl "foodhub/internal/menu/controller"
	orderctrl "foodhub/internal/order/controller"
	reviewctrl "foodhub/internal/review/controller"
)

type Controllers struct {
	Account  *accountctrl.Controller
	Menu     *menuctrl.Controller
	Order    *orderctrl.OrderController
	Review   *reviewctrl.Controller
	Realtime http.Handler
}

func NewRouter(c Controllers, verifier auth.Verifier, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	})

	// websocket connections are long-lived; keep them out of the request log
	r.Handle("/ws", c.Realtime)

	r.Group(func(r chi.Router) {
		r.Use(requestLogger(logger))

		r.Post("/auth/register", c.Account.HandleRegister)
		r.Post("/auth/login", c.Account.HandleLogin)

		r.Route("/restaurants", func(r chi.Router) {
			r.Post("/menu-items/search", c.Menu.HandleSearchMenuItems)
			r.Get("/{id}/menu", c.Menu.HandleGetMenu)
			r.Get("/{id}/reviews", c.Review.HandleListReviews)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(auth.Authenticate(verifier, logger))
			c.Order.Routes(r)
			r.With(auth.RequireRoles(logger, domain.RoleCustomer)).Post("/{id}/review", c.Review.HandleCreateReview)
		})
	})

	return r
}
