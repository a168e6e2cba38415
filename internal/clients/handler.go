package clients

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

const clientsTable = "clients"

type createClientRequest struct {
	ResellerID string  `json:"reseller_id,omitempty" validate:"omitempty,uuid4|uuid"`
	Name       string  `json:"name" validate:"required,max=200"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address    *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

type updateClientRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

// Handler exposes the client contract to page/request handlers.
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

// MountRoutes attaches the client routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/clients", h.List)
	r.Get("/clients/{id}", h.Get)
	r.Post("/clients", h.Create)
	r.Patch("/clients/{id}", h.Update)
	r.Delete("/clients/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authorize(w, r, authz.ActionList)
	if !ok {
		return
	}
	filters := ClientFilters{Search: r.URL.Query().Get("search")}
	if rid := r.URL.Query().Get("reseller_id"); rid != "" {
		filters.ResellerID = &rid
	}
	list, err := h.service.List(r.Context(), identity, filters)
	if err != nil {
		h.logger.Error("list clients", slog.Any("error", err))
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
	client, err := h.service.Get(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authorize(w, r, authz.ActionCreate)
	if !ok {
		return
	}
	var req createClientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	client, err := h.service.Create(r.Context(), identity, CreateClientInput{
		ResellerID: req.ResellerID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.publish(r, realtime.Event{Table: clientsTable, ID: client.ID, Op: realtime.OpCreate})
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.authorize(w, r, authz.ActionUpdate)
	if !ok {
		return
	}
	var req updateClientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	client, err := h.service.Update(r.Context(), identity, UpdateClientInput{
		ID:      chi.URLParam(r, "id"),
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.publish(r, realtime.Event{Table: clientsTable, ID: client.ID, Op: realtime.OpUpdate})
	httpx.JSON(w, http.StatusOK, client)
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
	h.publish(r, realtime.Event{Table: clientsTable, ID: id, Op: realtime.OpDelete})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, action authz.Action) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return auth.Identity{}, false
	}
	if err := authz.Authorize(identity, authz.EntityClient, action); err != nil {
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
