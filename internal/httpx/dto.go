package httpx

import (
	"time"

	"github.com/jcmexdev/pizzaflow/internal/cart"
	"github.com/jcmexdev/pizzaflow/internal/domain"
)

type RegisterRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

type NameRequest struct {
	Name string `json:"name"`
}

type AgeRequest struct {
	Age int `json:"age"`
}

type AgeResponse struct {
	Age     int    `json:"age"`
	Verdict string `json:"verdict"`
}

type AddressRequest struct {
	Address string `json:"address"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	RealName  string `json:"real_name,omitempty"`
	Address   string `json:"address,omitempty"`
	Age       *int   `json:"age,omitempty"`
}

type AddItemRequest struct {
	ItemID string `json:"item_id"`
	Size   string `json:"size"`
	Qty    int    `json:"qty"`
}

type AddBatchRequest struct {
	// Items are raw "item_id size qty" requests, validated independently.
	Items []string `json:"items"`
}

type BatchErrorDTO struct {
	Request string `json:"request"`
	Reason  string `json:"reason"`
	Detail  string `json:"detail,omitempty"`
}

type AddBatchResponse struct {
	Added  []CartLineDTO   `json:"added"`
	Errors []BatchErrorDTO `json:"errors"`
}

type CartLineDTO struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	StoreID  string `json:"store_id"`
	Size     string `json:"size"`
	Qty      int    `json:"qty"`
	Price    int64  `json:"price"`
	Subtotal int64  `json:"subtotal"`
}

type CartResponse struct {
	Lines []CartLineDTO `json:"lines"`
	Total int64         `json:"total"`
}

type ConfirmOrderRequest struct {
	StoreID string `json:"store_id"`
}

type ConfirmOrderResponse struct {
	OrderID string `json:"order_id"`
	Total   int64  `json:"total"`
}

type PayRequest struct {
	// Outcome selects the simulated result: "ok" (default) or "fail".
	Outcome string `json:"outcome,omitempty"`
}

type PayResponse struct {
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Amount   int64  `json:"amount"`
}

type OrderLineDTO struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Size     string `json:"size"`
	Qty      int    `json:"qty"`
	Price    int64  `json:"price"`
}

type OrderResponse struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	StoreID   string         `json:"store_id"`
	Total     int64          `json:"total"`
	Status    string         `json:"status"`
	CreatedAt string         `json:"created_at"`
	Lines     []OrderLineDTO `json:"lines,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapCartLine(l domain.CartLine) CartLineDTO {
	return CartLineDTO{
		ItemID:   l.ItemID,
		ItemName: l.ItemName,
		StoreID:  l.StoreID,
		Size:     l.Size,
		Qty:      l.Qty,
		Price:    l.Price,
		Subtotal: l.Subtotal(),
	}
}

func mapCartLines(lines []domain.CartLine) []CartLineDTO {
	out := make([]CartLineDTO, len(lines))
	for i, l := range lines {
		out[i] = mapCartLine(l)
	}
	return out
}

func mapBatchErrors(rejected []cart.BatchReject) []BatchErrorDTO {
	out := make([]BatchErrorDTO, len(rejected))
	for i, r := range rejected {
		out[i] = BatchErrorDTO{Request: r.Spec, Reason: string(r.Reason), Detail: r.Detail}
	}
	return out
}

func mapOrder(o *domain.Order) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		StoreID:   o.StoreID,
		Total:     o.Total,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, OrderLineDTO{
			ItemID:   l.ItemID,
			ItemName: l.ItemName,
			Size:     l.Size,
			Qty:      l.Qty,
			Price:    l.Price,
		})
	}
	return resp
}

func mapUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		RealName:  u.RealName,
		Address:   u.Address,
		Age:       u.Age,
	}
}
