package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mariam-shebl4/ecommerce-firebase/internal/catalog"
)

// ProductFeed delivers full catalog snapshots on every change.
type ProductFeed interface {
	Subscribe() (<-chan []catalog.Product, func())
}

type ProductHandler struct {
	repo    catalog.Repository
	feed    ProductFeed
	timeout time.Duration
}

func NewProductHandler(repo catalog.Repository, feed ProductFeed, timeout time.Duration) *ProductHandler {
	return &ProductHandler{repo: repo, feed: feed, timeout: timeout}
}

type CreateProductRequestDTO struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Images      []string `json:"images"`
}

// List returns one page of the filtered, sorted catalog.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	query, err := queryFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	products, err := h.repo.ListProducts(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, catalog.Apply(products, query))
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	product, err := h.repo.GetProduct(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "name must not be empty")
		return
	}
	if req.Price <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "price must be positive")
		return
	}

	product := catalog.Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Images:      req.Images,
	}
	if err := h.repo.CreateProduct(ctx, product); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

// Stream pushes catalog snapshots as server-sent events. Every upstream
// change replaces the whole product sequence; the subscription ends with the
// request.
func (h *ProductHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal_error", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsubscribe := h.feed.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-r.Context().Done():
			return
		case products, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(products)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func queryFromRequest(r *http.Request) (catalog.Query, error) {
	q := catalog.Query{
		SearchTerm: r.URL.Query().Get("search"),
		Page:       1,
	}

	if raw := r.URL.Query().Get("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return q, fmt.Errorf("min_price must be a non-negative number")
		}
		q.MinPrice = v
	}
	if raw := r.URL.Query().Get("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return q, fmt.Errorf("max_price must be a non-negative number")
		}
		q.MaxPrice = v
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return q, fmt.Errorf("page must be a positive integer")
		}
		q.Page = v
	}

	switch opt := catalog.SortOption(r.URL.Query().Get("sort")); opt {
	case catalog.SortNone, catalog.SortPriceAsc, catalog.SortPriceDesc, catalog.SortName:
		q.Sort = opt
	default:
		return q, fmt.Errorf("unknown sort option %q", opt)
	}

	return q, nil
}
