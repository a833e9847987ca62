package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/stocksim/internal/domain"
	"github.com/yourorg/stocksim/internal/quotes"
	pgRepo "github.com/yourorg/stocksim/internal/repository/postgres"
	"github.com/yourorg/stocksim/internal/trading"
)

type Handlers struct {
	renderer *Renderer
	userRepo *pgRepo.UserRepo
	trading  *trading.Service
	quotes   quotes.Provider
	sessions Sessions
	logger   *slog.Logger
}

func NewHandlers(
	renderer *Renderer,
	userRepo *pgRepo.UserRepo,
	tradingSvc *trading.Service,
	provider quotes.Provider,
	sessions Sessions,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		renderer: renderer,
		userRepo: userRepo,
		trading:  tradingSvc,
		quotes:   provider,
		sessions: sessions,
		logger:   logger,
	}
}

// respondErr is the single translation point from service errors to apology
// pages. Business-rule violations map to 400, everything unexpected to a
// generic 500 whose message is the status reason phrase.
func (h *Handlers) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, trading.ErrMissingSymbol),
		errors.Is(err, trading.ErrInvalidShares),
		errors.Is(err, trading.ErrInvalidAmount):
		h.renderer.Apology(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, trading.ErrInsufficientCash):
		h.renderer.Apology(w, http.StatusBadRequest, "you can't afford that")
	case errors.Is(err, trading.ErrInsufficientShares):
		h.renderer.Apology(w, http.StatusBadRequest, "you don't have that many shares")
	case errors.Is(err, quotes.ErrUnknownSymbol):
		h.renderer.Apology(w, http.StatusBadRequest, "invalid symbol")
	case errors.Is(err, quotes.ErrUnavailable):
		h.renderer.Apology(w, http.StatusBadRequest, "quote lookup failed")
	case errors.Is(err, pgRepo.ErrUsernameTaken):
		h.renderer.Apology(w, http.StatusBadRequest, "username has already been taken")
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "err", err)
		h.renderer.Apology(w, http.StatusInternalServerError,
			http.StatusText(http.StatusInternalServerError))
	}
}

func (h *Handlers) flash(r *http.Request) string {
	token := TokenFromCtx(r.Context())
	if token == "" {
		return ""
	}
	return h.sessions.PopFlash(r.Context(), token)
}

func (h *Handlers) setFlash(r *http.Request, msg string) {
	token := TokenFromCtx(r.Context())
	if token == "" {
		return
	}
	if err := h.sessions.SetFlash(r.Context(), token, msg); err != nil {
		h.logger.Warn("failed to set flash", "err", err)
	}
}

type formPage struct {
	Flash string
}

type indexPage struct {
	Flash     string
	Portfolio *trading.Portfolio
}

// Index shows the portfolio: every held position at live prices, cash, and
// the grand total.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromCtx(r.Context())
	portfolio, err := h.trading.Positions(r.Context(), userID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "index.html", indexPage{
		Flash:     h.flash(r),
		Portfolio: portfolio,
	})
}

type quotedPage struct {
	Flash string
	Quote *domain.Quote
}

func (h *Handlers) QuoteForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "quote.html", formPage{Flash: h.flash(r)})
}

func (h *Handlers) Quote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.FormValue("symbol"))
	if symbol == "" {
		h.renderer.Apology(w, http.StatusBadRequest, "must provide symbol")
		return
	}
	q, err := h.quotes.Lookup(r.Context(), symbol)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "quoted.html", quotedPage{Quote: q})
}

func (h *Handlers) BuyForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "buy.html", formPage{Flash: h.flash(r)})
}

func (h *Handlers) Buy(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromCtx(r.Context())
	symbol := r.FormValue("symbol")
	shares, err := strconv.ParseInt(r.FormValue("shares"), 10, 64)
	if err != nil {
		h.renderer.Apology(w, http.StatusBadRequest, "invalid shares")
		return
	}
	if _, err := h.trading.Buy(r.Context(), userID, symbol, shares); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.setFlash(r, "Bought!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type sellPage struct {
	Flash   string
	Symbols []string
}

func (h *Handlers) SellForm(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromCtx(r.Context())
	symbols, err := h.trading.HeldSymbols(r.Context(), userID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "sell.html", sellPage{
		Flash:   h.flash(r),
		Symbols: symbols,
	})
}

func (h *Handlers) Sell(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromCtx(r.Context())
	symbol := strings.TrimSpace(r.FormValue("symbol"))
	if symbol == "" {
		h.renderer.Apology(w, http.StatusForbidden, "must provide symbol")
		return
	}
	shares, err := strconv.ParseInt(r.FormValue("shares"), 10, 64)
	if err != nil {
		h.renderer.Apology(w, http.StatusBadRequest, "invalid shares")
		return
	}
	if _, err := h.trading.Sell(r.Context(), userID, symbol, shares); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.setFlash(r, "Sold!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type historyPage struct {
	Flash        string
	Transactions []domain.Transaction
	CashSymbol   string
}

func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromCtx(r.Context())
	txns, err := h.trading.History(r.Context(), userID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.renderer.Render(w, http.StatusOK, "history.html", historyPage{
		Flash:        h.flash(r),
		Transactions: txns,
		CashSymbol:   domain.CashSymbol,
	})
}

func (h *Handlers) AddCashForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "add_cash.html", formPage{Flash: h.flash(r)})
}

func (h *Handlers) AddCash(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromCtx(r.Context())
	if r.FormValue("amount") == "" {
		h.renderer.Apology(w, http.StatusForbidden, "must provide an amount")
		return
	}
	amount, err := strconv.ParseFloat(r.FormValue("amount"), 64)
	if err != nil {
		h.renderer.Apology(w, http.StatusBadRequest, "invalid amount")
		return
	}
	if _, err := h.trading.AddCash(r.Context(), userID, amount); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.setFlash(r, "Cash added!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "login.html", formPage{})
}

// Login verifies credentials and starts a session. The failure message never
// distinguishes an unknown username from a wrong password.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w, r)

	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" {
		h.renderer.Apology(w, http.StatusForbidden, "must provide username")
		return
	}
	if password == "" {
		h.renderer.Apology(w, http.StatusForbidden, "must provide password")
		return
	}

	user, err := h.userRepo.GetByUsername(r.Context(), username)
	if err != nil {
		h.renderer.Apology(w, http.StatusForbidden, "invalid username and/or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		h.renderer.Apology(w, http.StatusForbidden, "invalid username and/or password")
		return
	}

	if err := h.startSession(w, r, user); err != nil {
		h.respondErr(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "register.html", formPage{})
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" {
		h.renderer.Apology(w, http.StatusBadRequest, "must provide username")
		return
	}
	if password == "" {
		h.renderer.Apology(w, http.StatusBadRequest, "must provide password")
		return
	}
	if r.FormValue("confirmation") != password {
		h.renderer.Apology(w, http.StatusBadRequest, "passwords must match")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := h.userRepo.Create(r.Context(), user); err != nil {
		h.respondErr(w, r, err)
		return
	}

	if err := h.startSession(w, r, user); err != nil {
		h.respondErr(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// APIQuote serves a live quote as JSON for client-side price refresh.
func (h *Handlers) APIQuote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	q, err := h.quotes.Lookup(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, quotes.ErrUnknownSymbol) {
			writeJSONError(w, http.StatusNotFound, "unknown symbol")
			return
		}
		h.logger.Error("api quote failed", "symbol", symbol, "err", err)
		writeJSONError(w, http.StatusBadGateway, "quote lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) startSession(w http.ResponseWriter, r *http.Request, user *domain.User) error {
	token, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *Handlers) clearSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("failed to destroy session", "err", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
