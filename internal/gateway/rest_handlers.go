package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/broker-ledger/internal/auth"
	"github.com/yourorg/broker-ledger/internal/domain"
	"github.com/yourorg/broker-ledger/internal/execution"
	"github.com/yourorg/broker-ledger/internal/query"
	pgRepo "github.com/yourorg/broker-ledger/internal/repository/postgres"
)

type Handlers struct {
	userRepo  *pgRepo.UserRepo
	orderRepo *pgRepo.OrderRepo
	querySvc  *query.Service
	engine    *execution.Engine
	jwtSvc    *auth.JWTService
	logger    *slog.Logger
}

func NewHandlers(
	userRepo *pgRepo.UserRepo,
	orderRepo *pgRepo.OrderRepo,
	querySvc *query.Service,
	engine *execution.Engine,
	jwtSvc *auth.JWTService,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		userRepo:  userRepo,
		orderRepo: orderRepo,
		querySvc:  querySvc,
		engine:    engine,
		jwtSvc:    jwtSvc,
		logger:    logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	user := &domain.User{
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := h.userRepo.Create(r.Context(), user); err != nil {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	token, err := h.jwtSvc.Sign(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.userRepo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := h.jwtSvc.Sign(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (h *Handlers) Verify(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": true, "user": user})
}

func (h *Handlers) GetHoldings(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	holdings, err := h.querySvc.ListHoldings(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to fetch holdings", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch holdings")
		return
	}
	if holdings == nil {
		holdings = []domain.Holding{}
	}
	writeJSON(w, http.StatusOK, holdings)
}

func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	sum, err := h.querySvc.Summary(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to compute summary", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handlers) GetFunds(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	funds, err := h.querySvc.Funds(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to compute funds", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to compute funds")
		return
	}
	writeJSON(w, http.StatusOK, funds)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	orders, err := h.orderRepo.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to fetch orders", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch orders")
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

type orderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	var req execution.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, orderResponse{Success: false, Message: "invalid request body"})
		return
	}

	_, err := h.engine.Execute(r.Context(), userID, req)
	if err != nil {
		var insufficient *execution.InsufficientQuantityError
		switch {
		case errors.As(err, &insufficient),
			errors.Is(err, execution.ErrNoHolding),
			errors.Is(err, execution.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, orderResponse{Success: false, Message: err.Error()})
		default:
			h.logger.Error("order execution failed", "symbol", req.Symbol, "err", err)
			writeJSON(w, http.StatusInternalServerError, orderResponse{Success: false, Message: "error placing order"})
		}
		return
	}

	writeJSON(w, http.StatusOK, orderResponse{Success: true, Message: "order placed and holdings updated"})
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	order, err := h.orderRepo.GetByID(r.Context(), id)
	if err != nil || order.UserID != userID {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
