// Package handlers is the thin HTTP layer over discovery, aggregation and
// product refresh.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"pricehound/internal/aggregator"
	"pricehound/internal/discovery"
	"pricehound/logger"
	"pricehound/services/store"
	"pricehound/services/updater"
)

// Discoverer mirrors the discovery pipeline's entry point
type Discoverer interface {
	DiscoverLowestPrice(ctx context.Context, query string, domains []string) discovery.Result
}

// Handlers holds the collaborators behind the HTTP routes
type Handlers struct {
	pipeline  Discoverer
	offers    *aggregator.Aggregator
	products  store.ProductStore
	refresher *updater.Updater
	log       *logger.Logger
}

// NewHandlers wires the HTTP layer. products and refresher may be nil when
// persistence is not configured; the product routes then answer 503.
func NewHandlers(pipeline Discoverer, offers *aggregator.Aggregator, products store.ProductStore, refresher *updater.Updater) *Handlers {
	return &Handlers{
		pipeline:  pipeline,
		offers:    offers,
		products:  products,
		refresher: refresher,
		log:       logger.ForAPI(),
	}
}

// Register attaches all routes to the router
func (h *Handlers) Register(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/search/lowest", h.SearchLowest).Methods(http.MethodGet)
	v1.HandleFunc("/search/offers", h.SearchOffers).Methods(http.MethodGet)
	v1.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	v1.HandleFunc("/products/refresh-batch", h.RefreshBatch).Methods(http.MethodPost)
	v1.HandleFunc("/products/refresh-all", h.RefreshAll).Methods(http.MethodPost)
	v1.HandleFunc("/products/{pid}/refresh", h.RefreshProduct).Methods(http.MethodPost)
	v1.HandleFunc("/products/{pid}/history", h.GetPriceHistory).Methods(http.MethodGet)
	v1.HandleFunc("/products/{pid}", h.GetProduct).Methods(http.MethodGet)
}

// Health reports liveness
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SearchLowest runs lowest-price discovery for ?q, optionally restricted to
// ?domains (comma separated).
func (h *Handlers) SearchLowest(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	var domains []string
	if raw := r.URL.Query().Get("domains"); raw != "" {
		for _, d := range strings.Split(raw, ",") {
			if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
				domains = append(domains, d)
			}
		}
	}

	result := h.pipeline.DiscoverLowestPrice(r.Context(), query, domains)
	writeJSON(w, http.StatusOK, result)
}

// SearchOffers runs the multi-offer aggregation for ?q with optional ?limit
func (h *Handlers) SearchOffers(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := 15
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	result := h.offers.SearchOffers(r.Context(), query, limit)
	writeJSON(w, http.StatusOK, result)
}

// ListProducts returns all tracked products, or a single match for ?name=
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	if h.products == nil {
		writeError(w, http.StatusServiceUnavailable, "product store is not configured")
		return
	}

	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		product, err := h.products.GetByName(name)
		if err != nil {
			if err == store.ErrNotFound {
				writeError(w, http.StatusNotFound, "product not found")
				return
			}
			h.log.Error().Err(err).Str("name", name).Msg("Failed to find product")
			writeError(w, http.StatusInternalServerError, "failed to find product")
			return
		}
		writeJSON(w, http.StatusOK, []store.Product{*product})
		return
	}

	products, err := h.products.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list products")
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []store.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct returns one stored product
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	if h.products == nil {
		writeError(w, http.StatusServiceUnavailable, "product store is not configured")
		return
	}

	pid := mux.Vars(r)["pid"]
	product, err := h.products.GetByID(pid)
	if err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		h.log.Error().Err(err).Str("product", pid).Msg("Failed to load product")
		writeError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// GetPriceHistory returns a product's recorded price points, newest first
func (h *Handlers) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	if h.products == nil {
		writeError(w, http.StatusServiceUnavailable, "product store is not configured")
		return
	}

	pid := mux.Vars(r)["pid"]
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	points, err := h.products.History(pid, limit)
	if err != nil {
		h.log.Error().Err(err).Str("product", pid).Msg("Failed to load price history")
		writeError(w, http.StatusInternalServerError, "failed to load price history")
		return
	}
	if points == nil {
		points = []store.PricePoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

// RefreshProduct refreshes one stored product's price
func (h *Handlers) RefreshProduct(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "product refresh is not configured")
		return
	}

	pid := mux.Vars(r)["pid"]
	outcome, err := h.refresher.RefreshOne(r.Context(), pid)
	if err != nil {
		h.log.Error().Err(err).Str("product", pid).Msg("Refresh failed")
		writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}
	if outcome.Status == updater.StatusNotFound {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// RefreshBatch refreshes the product ids given as a JSON array body
func (h *Handlers) RefreshBatch(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "product refresh is not configured")
		return
	}

	var ids []string
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil || len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "request body must be a non-empty JSON array of product ids")
		return
	}

	outcomes := h.refresher.RefreshBatch(r.Context(), ids)
	writeJSON(w, http.StatusOK, outcomes)
}

// RefreshAll refreshes every stored product
func (h *Handlers) RefreshAll(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "product refresh is not configured")
		return
	}

	outcomes, err := h.refresher.RefreshAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Refresh-all failed")
		writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}
	writeJSON(w, http.StatusOK, outcomes)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
