package http

import (
	"net/http"

	"github.com/aims/storefront/domain"
	"github.com/aims/storefront/internal/checkout"
	"github.com/go-chi/chi/v5"
)

// ProductLookup resolves the product snapshot added to the cart.
type ProductLookup interface {
	Get(id string) (domain.Product, error)
}

type CartHandler struct {
	session  *checkout.Session
	products ProductLookup
}

func NewCartHandler(session *checkout.Session, products ProductLookup) *CartHandler {
	return &CartHandler{session: session, products: products}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type SelectAllRequestDTO struct {
	Selected bool `json:"selected"`
}

type CartLineDTO struct {
	domain.CartLineItem
	Selected     bool `json:"selected"`
	ExceedsStock bool `json:"exceeds_stock"`
}

type CartResponse struct {
	Items         []CartLineDTO `json:"items"`
	Totals        domain.Totals `json:"totals"`
	HasStockIssue bool          `json:"has_stock_issue"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	p, err := h.products.Get(req.ProductID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := h.session.AddItem(p, req.Quantity); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.cartResponse())
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.session.UpdateQuantity(chi.URLParam(r, "product_id"), req.Quantity); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.session.RemoveItem(chi.URLParam(r, "product_id")); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	if err := h.session.ToggleSelection(chi.URLParam(r, "line_id")); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	var req SelectAllRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.session.SelectAll(req.Selected); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *CartHandler) cartResponse() CartResponse {
	c := h.session.Cart()
	items := c.Items()
	resp := CartResponse{
		Items:         make([]CartLineDTO, len(items)),
		Totals:        c.Totals(),
		HasStockIssue: c.HasStockIssue(),
	}
	for i, l := range items {
		resp.Items[i] = CartLineDTO{CartLineItem: l, Selected: c.IsSelected(l.ID), ExceedsStock: l.ExceedsStock()}
	}
	return resp
}
