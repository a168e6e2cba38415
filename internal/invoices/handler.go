package invoices

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

const invoicesTable = "invoices"

type invoiceLineRequest struct {
	Description string  `json:"description" validate:"required"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

type createInvoiceRequest struct {
	ResellerID string               `json:"reseller_id,omitempty"`
	ClientID   string               `json:"client_id" validate:"required"`
	Lines      []invoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type updateInvoiceRequest struct {
	ClientID *string               `json:"client_id,omitempty"`
	Lines    *[]invoiceLineRequest `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

type setInvoiceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Handler exposes the invoice contract to page/request handlers.
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

// MountRoutes attaches the invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.List)
	r.Get("/invoices/{id}", h.Get)
	r.Post("/invoices", h.Create)
	r.Patch("/invoices/{id}", h.Update)
	r.Delete("/invoices/{id}", h.Delete)
	r.Post("/invoices/{id}/status", h.SetStatus)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authorize(w, r, authz.ActionList)
	if !ok {
		return
	}
	filters := InvoiceFilters{}
	if rid := r.URL.Query().Get("reseller_id"); rid != "" {
		filters.ResellerID = &rid
	}
	if st := r.URL.Query().Get("status"); st != "" {
		status := InvoiceStatus(st)
		filters.Status = &status
	}
	list, err := h.service.List(r.Context(), identity, filters)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
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
	invoice, err := h.service.Get(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authorize(w, r, authz.ActionCreate)
	if !ok {
		return
	}
	var req createInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	invoice, err := h.service.Create(r.Context(), identity, CreateInvoiceInput{
		ResellerID: req.ResellerID,
		ClientID:   req.ClientID,
		Lines:      toInvoiceLines(req.Lines),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.publish(r, realtime.Event{Table: invoicesTable, ID: invoice.ID, Op: realtime.OpCreate})
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authorize(w, r, authz.ActionUpdate)
	if !ok {
		return
	}
	var req updateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	input := UpdateInvoiceInput{ID: chi.URLParam(r, "id"), ClientID: req.ClientID}
	if req.Lines != nil {
		lines := toInvoiceLines(*req.Lines)
		input.Lines = &lines
	}

	invoice, err := h.service.Update(r.Context(), identity, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.publish(r, realtime.Event{Table: invoicesTable, ID: invoice.ID, Op: realtime.OpUpdate})
	httpx.JSON(w, http.StatusOK, invoice)
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
	h.publish(r, realtime.Event{Table: invoicesTable, ID: id, Op: realtime.OpDelete})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authorize(w, r, authz.ActionSetStatus)
	if !ok {
		return
	}
	var req setInvoiceStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	invoice, err := h.service.SetStatus(r.Context(), identity, chi.URLParam(r, "id"), InvoiceStatus(req.Status))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.publish(r, realtime.Event{Table: invoicesTable, ID: invoice.ID, Op: realtime.OpUpdate})
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, action authz.Action) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return auth.Identity{}, false
	}
	if err := authz.Authorize(identity, authz.EntityInvoice, action); err != nil {
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

func toInvoiceLines(lines []invoiceLineRequest) []InvoiceLine {
	result := make([]InvoiceLine, 0, len(lines))
	for _, l := range lines {
		result = append(result, InvoiceLine{Description: l.Description, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return result
}
