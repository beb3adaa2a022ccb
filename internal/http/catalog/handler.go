package catalog

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/atacadao/internal/advisor"
	"github.com/MrJamesThe3rd/atacadao/internal/apperr"
	"github.com/MrJamesThe3rd/atacadao/internal/catalog"
	"github.com/MrJamesThe3rd/atacadao/internal/http/authn"
	"github.com/MrJamesThe3rd/atacadao/internal/http/respond"
	"github.com/MrJamesThe3rd/atacadao/internal/identity"
)

const maxUploadSize = 10 << 20

type Handler struct {
	svc     *catalog.Service
	advisor *advisor.Service
}

func NewHandler(svc *catalog.Service, adv *advisor.Service) *Handler {
	return &Handler{svc: svc, advisor: adv}
}

// Routes lets every signed-in user browse; only managers change the catalog.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(authn.RequireRole(identity.RoleManager))
		r.Post("/", h.create)
		r.Post("/import", h.importPriceList)
		r.Post("/extract", h.extract)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.deactivate)
	})
}

type productResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(p *catalog.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Code:        p.Code,
		Description: p.Description,
		Unit:        p.Unit,
		UnitPrice:   p.UnitPrice,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// list hides inactive products from everyone but managers.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ListFilter{
		ActiveOnly: !authn.Caller(r).IsManager() || r.URL.Query().Get("active") == "true",
		Search:     r.URL.Query().Get("q"),
	}

	products, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toResponse(p)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if !p.Active && !authn.Caller(r).IsManager() {
		respond.Error(w, r, apperr.ErrNotFound)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

type createProductRequest struct {
	Code        string          `json:"code" validate:"required,max=40"`
	Description string          `json:"description" validate:"required,max=200"`
	Unit        string          `json:"unit" validate:"max=10"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Create(r.Context(), catalog.CreateParams{
		Code:        req.Code,
		Description: req.Description,
		Unit:        req.Unit,
		UnitPrice:   req.UnitPrice,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(p))
}

type updateProductRequest struct {
	Description *string          `json:"description" validate:"omitnil,max=200"`
	Unit        *string          `json:"unit" validate:"omitnil,max=10"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Active      *bool            `json:"active"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateProductRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.Update(r.Context(), id, catalog.UpdateParams{
		Description: req.Description,
		Unit:        req.Unit,
		UnitPrice:   req.UnitPrice,
		Active:      req.Active,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Deactivate(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type importResponse struct {
	Profile string `json:"profile"`
	Charset string `json:"charset"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
}

func (h *Handler) importPriceList(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, r, apperr.Invalid("file", "file too large or malformed form"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, apperr.Invalid("file", "required"))
		return
	}
	defer file.Close()

	res, err := h.svc.Import(r.Context(), file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, importResponse{
		Profile: res.Profile,
		Charset: res.Charset,
		Created: res.Created,
		Updated: res.Updated,
	})
}

type extractRequest struct {
	Text string `json:"text" validate:"required"`
}

type draftResponse struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// extract only proposes products; nothing is saved.
func (h *Handler) extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	drafts, err := h.advisor.ExtractProducts(r.Context(), req.Text)
	if errors.Is(err, advisor.ErrDisabled) {
		respond.Fail(w, http.StatusServiceUnavailable, "advisor_disabled", "no model is configured")
		return
	}

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]draftResponse, len(drafts))
	for i, d := range drafts {
		resp[i] = draftResponse{Code: d.Code, Description: d.Description, Unit: d.Unit, UnitPrice: d.UnitPrice}
	}

	respond.JSON(w, http.StatusOK, resp)
}
