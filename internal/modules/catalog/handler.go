package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/catalog-api/internal/pkg/clock"
)

const maxBodyBytes = 1 << 20

// Handler exposes catalog HTTP endpoints.
type Handler struct {
	service    Service
	clock      clock.Clock
	cfg        ListConfig
	writeGuard func(http.Handler) http.Handler
}

func NewHandler(service Service, clk clock.Clock, cfg ListConfig) *Handler {
	return &Handler{service: service, clock: clk, cfg: cfg}
}

// WithWriteGuard installs mw in front of every mutating route.
func (h *Handler) WithWriteGuard(mw func(http.Handler) http.Handler) *Handler {
	h.writeGuard = mw
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.getProduct)
		r.Get("/{id}/stats", h.productStats)

		r.Group(func(r chi.Router) {
			if h.writeGuard != nil {
				r.Use(h.writeGuard)
			}
			r.Post("/new", h.createProduct)
			r.Put("/{id}", h.updateProduct)
			r.Patch("/{id}", h.partialUpdateProduct)
			r.Delete("/{id}", h.deleteProduct)
		})
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lq := ListQuery{
		OnSale: q.Get("on_sale"),
		Search: q.Get("search"),
		ID:     q.Get("id"),
	}
	var page pageRequest
	if h.cfg.Paginate {
		page = h.cfg.parsePage(q)
		lq.Limit, lq.Offset = page.Limit, page.Offset
	}

	result, err := h.service.ListProducts(r.Context(), lq)
	if err != nil {
		writeError(w, r, err)
		return
	}

	now := h.clock.Now()
	views := make([]ProductView, 0, len(result.Products))
	for _, p := range result.Products {
		views = append(views, NewProductView(p, now))
	}
	if !h.cfg.Paginate {
		respond(w, http.StatusOK, views)
		return
	}
	respond(w, http.StatusOK, PageEnvelope{
		Count:    result.Count,
		Next:     nextLink(r, page, result.Count),
		Previous: previousLink(r, page),
		Results:  views,
	})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.CreateProduct(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, NewProductView(p, h.clock.Now()))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, NewProductView(p, h.clock.Now()))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *Handler) partialUpdateProduct(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, partial bool) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	in, err := decodeInput(w, r)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), id, in, partial)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, NewProductView(p, h.clock.Now()))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) productStats(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	stats, err := h.service.ProductStats(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, stats)
}

// productID parses the {id} URL parameter. Ids that are not integers cannot
// name a product, so they answer 404.
func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, ErrNotFound)
		return 0, false
	}
	return id, true
}

// decodeInput reads a JSON object, or a form body whose values are taken
// as strings. Empty form values become null.
func decodeInput(w http.ResponseWriter, r *http.Request) (ProductInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, fmt.Errorf("malformed form body: %w", err)
		}
		in := ProductInput{}
		for k, vs := range r.PostForm {
			if len(vs) == 0 || vs[0] == "" {
				in[k] = json.RawMessage("null")
				continue
			}
			raw, err := json.Marshal(vs[0])
			if err != nil {
				return nil, err
			}
			in[k] = raw
		}
		return in, nil
	}

	in := ProductInput{}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return nil, fmt.Errorf("malformed JSON body: %w", err)
	}
	return in, nil
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		respond(w, http.StatusBadRequest, verr.Fields)
	case errors.Is(err, ErrNotFound):
		respond(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respond(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
