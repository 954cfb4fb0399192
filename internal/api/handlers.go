package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"stockadvisor/internal/agents"
	"stockadvisor/internal/api/middleware"
	"stockadvisor/internal/services/auth"
	"stockadvisor/internal/services/market"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

// Advisor answers free-form requests; implemented by agents.Orchestrator.
type Advisor interface {
	Run(ctx context.Context, input string) agents.Result
}

// Accounts registers users and issues tokens.
type Accounts interface {
	middleware.TokenValidator
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*auth.Token, error)
}

// Watchlists stores per-user symbols.
type Watchlists interface {
	Add(ctx context.Context, username, symbol string) error
	List(ctx context.Context, username string) ([]string, error)
}

// Markets serves index quotes and price charts.
type Markets interface {
	Indexes(ctx context.Context, country string) []market.IndexQuote
	Chart(ctx context.Context, symbol, period string) ([]market.ChartPoint, error)
}

type handlers struct {
	advisor    Advisor
	accounts   Accounts
	watchlists Watchlists
	markets    Markets
	log        *logger.Logger
}

type analyzeRequest struct {
	Symbol string `json:"symbol"`
}

type analyzeResponse struct {
	Symbol string `json:"symbol"`
	Report string `json:"report"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *handlers) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{
		Message: "Welcome to the Multi-Agent Stock Advisor API. Use POST /analyze to get a recommendation.",
	})
}

func (h *handlers) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		writeError(w, errors.NewValidationError("symbol", "required", req.Symbol))
		return
	}

	prompt := "Analyze " + symbol + " and provide a comprehensive recommendation."
	res := h.advisor.Run(r.Context(), prompt)
	if !res.OK() {
		h.log.Warnw("Analysis failed", "symbol", symbol, "error", res.Err)
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Symbol: symbol, Report: res.String()})
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.accounts.Register(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, errors.ErrAlreadyExists) {
			middleware.WriteDetail(w, http.StatusBadRequest, "Username already registered")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "User created successfully"})
}

// token implements the OAuth2 password flow: form-encoded username and password.
func (h *handlers) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, errors.NewValidationError("form", "malformed form body", nil))
		return
	}

	token, err := h.accounts.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		if errors.Is(err, errors.ErrUnauthorized) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			middleware.WriteDetail(w, http.StatusUnauthorized, "Incorrect username or password")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

// chat never fails with a status code once authenticated; errors become text.
func (h *handlers) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res := h.advisor.Run(r.Context(), req.Message)
	if !res.OK() {
		writeJSON(w, http.StatusOK, chatResponse{Response: "Error: " + res.String()})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: res.Text})
}

func (h *handlers) indexes(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	if country == "" {
		country = "US"
	}
	writeJSON(w, http.StatusOK, h.markets.Indexes(r.Context(), country))
}

func (h *handlers) chart(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	points, err := h.markets.Chart(r.Context(), symbol, r.URL.Query().Get("period"))
	if err != nil {
		var verr *errors.ValidationError
		if errors.As(err, &verr) {
			writeError(w, err)
			return
		}
		h.log.Debugw("Chart lookup failed", "symbol", symbol, "error", err)
		middleware.WriteDetail(w, http.StatusNotFound, "Symbol not found")
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (h *handlers) listWatchlist(w http.ResponseWriter, r *http.Request) {
	usr := middleware.UserFromContext(r.Context())
	symbols, err := h.watchlists.List(r.Context(), usr.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, symbols)
}

func (h *handlers) addToWatchlist(w http.ResponseWriter, r *http.Request) {
	usr := middleware.UserFromContext(r.Context())
	if err := h.watchlists.Add(r.Context(), usr.Username, r.URL.Query().Get("symbol")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Symbol added"})
}

func decodeJSON(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return errors.NewValidationError("body", "invalid JSON body", nil)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors to status codes with a {detail} body.
func writeError(w http.ResponseWriter, err error) {
	var verr *errors.ValidationError
	switch {
	case errors.As(err, &verr):
		middleware.WriteDetail(w, http.StatusBadRequest, verr.Field+": "+verr.Message)
	case errors.Is(err, errors.ErrInvalidInput):
		middleware.WriteDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errors.ErrUnauthorized):
		middleware.WriteDetail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, errors.ErrNotFound):
		middleware.WriteDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errors.ErrAlreadyExists):
		middleware.WriteDetail(w, http.StatusConflict, err.Error())
	default:
		middleware.WriteDetail(w, http.StatusInternalServerError, err.Error())
	}
}
