package orders

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

const ordersTable = "orders"

type orderLineRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	ResellerID string             `json:"reseller_id,omitempty"`
	ClientID   string             `json:"client_id" validate:"required"`
	Lines      []orderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type updateOrderRequest struct {
	ClientID *string             `json:"client_id,omitempty"`
	Lines    *[]orderLineRequest `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Handler exposes the order contract to page/request handlers.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	notifier realtime.Notifier
	validate *validator.Validate
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service, notifier realtime.Notifier) *Handler {
	return &Handler{logger: logger, service: service, notifier: notifier, validate: validator.New()}
}

// MountRoutes attaches the order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Get)
	r.Post("/orders", h.Create)
	r.Patch("/orders/{id}", h.Update)
	r.Delete("/orders/{id}", h.Delete)
	r.Post("/orders/{id}/status", h.SetStatus)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authorize(w, r, authz.ActionList)
	if !ok {
		return
	}
	filters := OrderFilters{}
	if rid := r.URL.Query().Get("reseller_id"); rid != "" {
		filters.ResellerID = &rid
	}
	if st := r.URL.Query().Get("status"); st != "" {
		status := OrderStatus(st)
		filters.Status = &status
	}
	list, err := h.service.List(r.Context(), identity, filters)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	page, perPage := shared.ParsePageQuery(r.URL.Query())
	httpx.JSON(w, http.StatusOK, shared.Paginate(list, page, perPage))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authorize(w, r, authz.ActionRead)
	if !ok {
		return
	}
	order, err := h.service.Get(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authorize(w, r, authz.ActionCreate)
	if !ok {
		return
	}
	var req createOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	order, err := h.service.Create(r.Context(), identity, CreateOrderInput{
		ResellerID: req.ResellerID,
		ClientID:   req.ClientID,
		Lines:      toLineInputs(req.Lines),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.publish(r, realtime.Event{Table: ordersTable, ID: order.ID, Op: realtime.OpCreate})
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authorize(w, r, authz.ActionUpdate)
	if !ok {
		return
	}
	var req updateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	input := UpdateOrderInput{ID: chi.URLParam(r, "id"), ClientID: req.ClientID}
	if req.Lines != nil {
		lines := toLineInputs(*req.Lines)
		input.Lines = &lines
	}

	order, err := h.service.Update(r.Context(), identity, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.publish(r, realtime.Event{Table: ordersTable, ID: order.ID, Op: realtime.OpUpdate})
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authorize(w, r, authz.ActionDelete)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), identity, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.publish(r, realtime.Event{Table: ordersTable, ID: id, Op: realtime.OpDelete})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authorize(w, r, authz.ActionSetStatus)
	if !ok {
		return
	}
	var req setStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	order, err := h.service.SetStatus(r.Context(), identity, chi.URLParam(r, "id"), OrderStatus(req.Status))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.publish(r, realtime.Event{Table: ordersTable, ID: order.ID, Op: realtime.OpUpdate})
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, action authz.Action) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return auth.Identity{}, false
	}
	if err := authz.Authorize(identity, authz.EntityOrder, action); err != nil {
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

func toLineInputs(lines []orderLineRequest) []OrderLineInput {
	inputs := make([]OrderLineInput, 0, len(lines))
	for _, l := range lines {
		inputs = append(inputs, OrderLineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return inputs
}
