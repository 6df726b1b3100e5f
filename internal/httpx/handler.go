// Package httpx is the command adapter: it maps HTTP requests onto the typed
// cart, order and profile operations and renders their results. It never
// touches the state store directly.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/pizzaflow/internal/cart"
	"github.com/jcmexdev/pizzaflow/internal/catalog"
	"github.com/jcmexdev/pizzaflow/internal/order"
	"github.com/jcmexdev/pizzaflow/internal/payment"
	"github.com/jcmexdev/pizzaflow/internal/store"
	"github.com/jcmexdev/pizzaflow/internal/users"
)

// Handler exposes the workflow operations over HTTP.
type Handler struct {
	users   *users.Service
	carts   *cart.Manager
	orders  *order.Engine
	catalog catalog.Provider
}

func NewHandler(us *users.Service, cm *cart.Manager, oe *order.Engine, cat catalog.Provider) *Handler {
	return &Handler{users: us, carts: cm, orders: oe, catalog: cat}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ── Profile ──

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := h.users.Register(r.Context(), userID, req.Username, req.FirstName); err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user_id": userID})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(u))
}

func (h *Handler) SetName(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := h.users.SetName(r.Context(), chi.URLParam(r, "userID"), req.Name); err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": req.Name})
}

func (h *Handler) SetAge(w http.ResponseWriter, r *http.Request) {
	var req AgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	verdict, err := h.users.SetAge(r.Context(), chi.URLParam(r, "userID"), req.Age)
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, AgeResponse{Age: req.Age, Verdict: string(verdict)})
}

func (h *Handler) SetAddress(w http.ResponseWriter, r *http.Request) {
	var req AddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := h.users.SetAddress(r.Context(), chi.URLParam(r, "userID"), req.Address); err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"address": req.Address})
}

// ── Catalog ──

func (h *Handler) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.catalog.ListStores(r.Context())
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, stores)
}

// StoresNear lists stores filtered by the user's city.
func (h *Handler) StoresNear(w http.ResponseWriter, r *http.Request) {
	stores, err := h.users.StoresNear(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, stores)
}

func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")
	stores, err := h.catalog.ListStores(r.Context())
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	if _, ok := catalog.FindStore(stores, storeID); !ok {
		writeError(w, http.StatusNotFound, "store_not_found", "")
		return
	}
	items, err := h.catalog.ListMenuItems(r.Context(), storeID)
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ── Cart ──

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	line, err := h.carts.AddItem(r.Context(), userID, req.ItemID, req.Size, req.Qty)
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapCartLine(line))
}

func (h *Handler) AddBatch(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req AddBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	res, err := h.carts.AddBatch(r.Context(), userID, req.Items)
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, AddBatchResponse{
		Added:  mapCartLines(res.Added),
		Errors: mapBatchErrors(res.Rejected),
	})
}

func (h *Handler) ViewCart(w http.ResponseWriter, r *http.Request) {
	lines, total, err := h.carts.View(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, CartResponse{Lines: mapCartLines(lines), Total: total})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), chi.URLParam(r, "userID")); err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Orders ──

func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req ConfirmOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.StoreID == "" {
		writeError(w, http.StatusBadRequest, "store_id_required", "")
		return
	}
	conf, err := h.orders.ConfirmOrder(r.Context(), userID, req.StoreID)
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ConfirmOrderResponse{OrderID: conf.OrderID, Total: conf.Total})
}

func (h *Handler) SettlePayment(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	outcome := payment.OutcomeOK
	if req.Outcome == string(payment.OutcomeFail) {
		outcome = payment.OutcomeFail
	}
	set, err := h.orders.SettlePayment(r.Context(), userID, outcome)
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, PayResponse{
		OrderID:  set.OrderID,
		Status:   string(set.Status),
		Provider: set.Result.Provider,
		Amount:   set.Result.Amount,
	})
}

func (h *Handler) LastOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Status(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

// writeDomainError maps workflow and validation failures onto HTTP statuses:
// bad input is 400, workflow conflicts are 409, missing entities are 404, and
// anything else is a storage-level 500.
func (h *Handler) writeDomainError(r *http.Request, w http.ResponseWriter, err error) {
	var re *cart.RejectError
	switch {
	case errors.As(err, &re):
		writeError(w, http.StatusBadRequest, string(re.Reason), re.Detail)
	case errors.Is(err, users.ErrNameEmpty),
		errors.Is(err, users.ErrNameDigits),
		errors.Is(err, users.ErrNameSymbols),
		errors.Is(err, users.ErrAgeNotPositive),
		errors.Is(err, users.ErrAddressEmpty):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, order.ErrMixedStore):
		writeError(w, http.StatusConflict, "mixed_store", err.Error())
	case errors.Is(err, order.ErrAlreadyDelivered):
		writeError(w, http.StatusConflict, "already_delivered", err.Error())
	case errors.Is(err, order.ErrNoOrder):
		writeError(w, http.StatusNotFound, "no_order", err.Error())
	case errors.Is(err, store.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, store.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage_error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}
