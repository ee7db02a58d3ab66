package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketprime/marketplace-api/internal/api/metrics"
	"github.com/marketprime/marketplace-api/internal/core/domain"
	"github.com/marketprime/marketplace-api/internal/core/ports"
)

// LeadHandler serves the contact-form endpoints.
type LeadHandler struct {
	service ports.LeadService
}

func NewLeadHandler(service ports.LeadService) *LeadHandler {
	return &LeadHandler{service: service}
}

type createLeadRequest struct {
	Name     string `json:"name" validate:"required"`
	Message  string `json:"message" validate:"required"`
	PhoneNo  string `json:"phone_no" validate:"required"`
	Location string `json:"location"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state"`
}

type leadStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type leadResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Lead    *domain.Lead `json:"lead"`
}

type leadsResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Leads   []*domain.Lead `json:"leads"`
}

// Create handles POST /forms/create. The submitting account is stamped onto
// the lead from the session, not the payload.
//
// @Summary      Submit a contact form
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createLeadRequest  true  "Contact details"
// @Success      201   {object}  leadResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /forms/create [post]
func (h *LeadHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createLeadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	lead, err := h.service.Create(c.Request().Context(), p, ports.CreateLeadInput{
		Name:     req.Name,
		Message:  req.Message,
		PhoneNo:  req.PhoneNo,
		Location: req.Location,
		City:     req.City,
		State:    req.State,
	})
	if err != nil {
		return err
	}

	metrics.LeadsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, leadResponse{
		Success: true,
		Message: "form submitted",
		Lead:    lead,
	})
}

// List handles GET /forms, newest first.
//
// @Summary      List contact-form leads
// @Tags         forms
// @Produce      json
// @Success      200  {object}  leadsResponse
// @Router       /forms [get]
func (h *LeadHandler) List(c echo.Context) error {
	leads, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, leadsResponse{Success: true, Count: len(leads), Leads: leads})
}

// Get handles GET /forms/:id.
//
// @Summary      Get a lead
// @Tags         forms
// @Produce      json
// @Param        id   path      string  true  "Lead ID"
// @Success      200  {object}  leadResponse
// @Failure      404  {object}  map[string]any
// @Router       /forms/{id} [get]
func (h *LeadHandler) Get(c echo.Context) error {
	lead, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, leadResponse{Success: true, Lead: lead})
}

// UpdateStatus handles PATCH /forms/:id/status. Any authenticated principal
// may move a lead between its working states.
//
// @Summary      Update a lead's status
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Lead ID"
// @Param        body  body      leadStatusRequest  true  "Target status"
// @Success      200   {object}  leadResponse
// @Failure      400   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /forms/{id}/status [patch]
func (h *LeadHandler) UpdateStatus(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req leadStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	status, ok := domain.ParseLeadStatus(req.Status)
	if !ok {
		return errUnknownStatus(req.Status)
	}

	lead, err := h.service.UpdateStatus(c.Request().Context(), p, c.Param("id"), status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, leadResponse{
		Success: true,
		Message: "status updated",
		Lead:    lead,
	})
}
