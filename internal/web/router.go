package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(h *Handlers, sessions Sessions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(NoCache)

	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)

	r.Group(func(r chi.Router) {
		r.Use(RequireLogin(sessions))
		r.Get("/", h.Index)
		r.Get("/buy", h.BuyForm)
		r.Post("/buy", h.Buy)
		r.Get("/sell", h.SellForm)
		r.Post("/sell", h.Sell)
		r.Get("/quote", h.QuoteForm)
		r.Post("/quote", h.Quote)
		r.Get("/history", h.History)
		r.Get("/add_cash", h.AddCashForm)
		r.Post("/add_cash", h.AddCash)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Use(RequireLogin(sessions))
		r.Get("/quote/{symbol}", h.APIQuote)
	})

	return r
}
