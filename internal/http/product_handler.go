package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/aims/storefront/domain"
	"github.com/aims/storefront/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	catalog *catalog.Catalog
}

func NewProductHandler(c *catalog.Catalog) *ProductHandler {
	return &ProductHandler{catalog: c}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
}

// List supports ?type=Book,CD&min_price=&max_price=&q=&include_inactive=true.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{Query: q.Get("q")}

	if v := q.Get("type"); v != "" {
		for _, t := range strings.Split(v, ",") {
			f.Types = append(f.Types, domain.ProductType(strings.TrimSpace(t)))
		}
	}
	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{{"min_price", &f.MinPrice}, {"max_price", &f.MaxPrice}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_"+p.name, p.name+" must be a number")
			return
		}
		*p.dst = &d
	}
	if v := q.Get("include_inactive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_include_inactive", "include_inactive must be a boolean")
			return
		}
		f.IncludeInactive = b
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: h.catalog.List(f)})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(chi.URLParam(r, "product_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
