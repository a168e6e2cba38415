package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/comptoir-erp/comptoir-erp/internal/auth"
	"github.com/comptoir-erp/comptoir-erp/internal/authz"
	"github.com/comptoir-erp/comptoir-erp/internal/platform/httpx"
	"github.com/comptoir-erp/comptoir-erp/internal/realtime"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

const productsTable = "products"

// Handler exposes the catalog contract to page/request handlers.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	notifier realtime.Notifier
	validate *validator.Validate
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service, notifier realtime.Notifier) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		notifier: notifier,
		validate: validator.New(),
	}
}

// MountRoutes attaches the catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.List)
	r.Get("/products/{id}", h.Get)
	r.Post("/products", h.Create)
	r.Patch("/products/{id}", h.Update)
	r.Delete("/products/{id}", h.Delete)
	r.Post("/products/{id}/adjust", h.AdjustQuantity)
	r.Get("/products/{id}/movements", h.Movements)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, authz.ActionList); !ok {
		return
	}

	filters := ProductFilters{Search: r.URL.Query().Get("search")}
	if c := r.URL.Query().Get("category"); c != "" {
		category := Category(c)
		filters.Category = &category
	}
	if c := r.URL.Query().Get("color"); c != "" {
		filters.Color = &c
	}

	products, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	page, perPage := shared.ParsePageQuery(r.URL.Query())
	httpx.JSON(w, http.StatusOK, shared.Paginate(products, page, perPage))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, authz.ActionRead); !ok {
		return
	}
	product, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, authz.ActionCreate); !ok {
		return
	}
	var req createProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	product, err := h.service.Create(r.Context(), CreateProductInput{
		Reference:    req.Reference,
		Name:         req.Name,
		Category:     Category(req.Category),
		Unit:         req.Unit,
		Color:        req.Color,
		Price:        req.Price,
		Quantity:     req.Quantity,
		PurchaseDate: req.PurchaseDate,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.publish(r, realtime.Event{Table: productsTable, ID: product.ID, Op: realtime.OpCreate})
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, authz.ActionUpdate); !ok {
		return
	}
	var req updateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	input := UpdateProductInput{
		ID:           chi.URLParam(r, "id"),
		Reference:    req.Reference,
		Name:         req.Name,
		Unit:         req.Unit,
		Color:        req.Color,
		Price:        req.Price,
		PurchaseDate: req.PurchaseDate,
	}
	if req.Category != nil {
		category := Category(*req.Category)
		input.Category = &category
	}

	product, err := h.service.Update(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.publish(r, realtime.Event{Table: productsTable, ID: product.ID, Op: realtime.OpUpdate})
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, authz.ActionDelete); !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.publish(r, realtime.Event{Table: productsTable, ID: id, Op: realtime.OpDelete})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, authz.ActionAdjustStock); !ok {
		return
	}
	var req adjustQuantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	product, movement, err := h.service.AdjustQuantity(r.Context(), AdjustmentInput{
		ProductID:      chi.URLParam(r, "id"),
		Delta:          req.Delta,
		Reason:         req.Reason,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.publish(r, realtime.Event{Table: productsTable, ID: product.ID, Op: realtime.OpUpdate})
	httpx.JSON(w, http.StatusOK, map[string]any{
		"product":  product,
		"movement": movement,
	})
}

func (h *Handler) Movements(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, authz.ActionRead); !ok {
		return
	}
	movements, err := h.service.Movements(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, movements)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, action authz.Action) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return auth.Identity{}, false
	}
	if err := authz.Authorize(identity, authz.EntityProduct, action); err != nil {
		httpx.RespondError(w, err)
		return auth.Identity{}, false
	}
	return identity, true
}

func (h *Handler) publish(r *http.Request, event realtime.Event) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Publish(r.Context(), event); err != nil {
		h.logger.Warn("publish change event", slog.String("table", event.Table), slog.Any("error", err))
	}
}
