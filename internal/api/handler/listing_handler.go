package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketprime/marketplace-api/internal/api/metrics"
	"github.com/marketprime/marketplace-api/internal/core/domain"
	"github.com/marketprime/marketplace-api/internal/core/ports"
)

// ListingHandler serves the listing endpoints: the public catalogue, owner
// CRUD and the admin moderation surface.
type ListingHandler struct {
	service ports.ListingService
	images  ImageStore
}

func NewListingHandler(service ports.ListingService, images ImageStore) *ListingHandler {
	return &ListingHandler{service: service, images: images}
}

// Create handles POST /products/create. The payload is multipart: listing
// fields as form values, one to three images as file parts named "images".
// Images are stored before the listing is persisted; if persistence fails
// the stored files are removed again.
//
// @Summary      Create a listing
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        name    formData  string  true  "Listing name"
// @Param        images  formData  file    true  "1 to 3 images, 3MB each"
// @Success      201     {object}  listingResponse
// @Failure      400     {object}  map[string]any
// @Failure      401     {object}  map[string]any
// @Router       /products/create [post]
func (h *ListingHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var form createListingForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form payload")
	}
	if err := c.Validate(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var refs []string
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		refs, err = h.images.Save(mf.File["images"])
		if err != nil {
			countUploadRejection(err)
			return err
		}
	}
	// A listing always carries at least one image.
	if len(refs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "product image is required")
	}

	listing, err := h.service.Create(c.Request().Context(), p, ports.CreateListingInput{
		Name:         form.Name,
		Description:  form.Description,
		Age:          form.Age,
		City:         form.City,
		State:        form.State,
		PhoneNo:      form.PhoneNo,
		WhatsappNo:   form.WhatsappNo,
		HourlyRate:   form.HourlyRate,
		NightRate:    form.NightRate,
		Services:     form.Services,
		Availability: form.Availability,
		Images:       refs,
	})
	if err != nil {
		h.images.Remove(refs)
		return err
	}

	metrics.ListingsCreatedTotal.WithLabelValues(string(listing.CreatedByRole)).Inc()
	return c.JSON(http.StatusCreated, listingResponse{
		Success: true,
		Message: "listing submitted",
		Listing: listing,
	})
}

// ListApproved handles GET /products, the public catalogue.
//
// @Summary      List approved listings
// @Tags         products
// @Produce      json
// @Success      200  {object}  listingsResponse
// @Router       /products [get]
func (h *ListingHandler) ListApproved(c echo.Context) error {
	listings, err := h.service.ListApproved(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listingsResponse{Success: true, Count: len(listings), Listings: listings})
}

// Get handles GET /products/:id.
//
// @Summary      Get a listing
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Listing ID"
// @Success      200  {object}  listingResponse
// @Failure      404  {object}  map[string]any
// @Router       /products/{id} [get]
func (h *ListingHandler) Get(c echo.Context) error {
	listing, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listingResponse{Success: true, Listing: listing})
}

// ListAll handles GET /products/admin/all, every listing regardless of status.
//
// @Summary      List all listings
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listingsResponse
// @Failure      403  {object}  map[string]any
// @Router       /products/admin/all [get]
func (h *ListingHandler) ListAll(c echo.Context) error {
	listings, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listingsResponse{Success: true, Count: len(listings), Listings: listings})
}

// ListPending handles GET /products/admin/pending, the moderation backlog in
// oldest-first order.
//
// @Summary      List pending listings
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listingsResponse
// @Failure      403  {object}  map[string]any
// @Router       /products/admin/pending [get]
func (h *ListingHandler) ListPending(c echo.Context) error {
	listings, err := h.service.ListPending(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listingsResponse{Success: true, Count: len(listings), Listings: listings})
}

// Update handles PUT /products/:id. Only fields present in the JSON body are
// merged; moderation fields silently drop for non-admin callers.
//
// @Summary      Update a listing
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Listing ID"
// @Param        body  body      updateListingRequest  true  "Fields to change"
// @Success      200   {object}  listingResponse
// @Failure      403   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /products/{id} [put]
func (h *ListingHandler) Update(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req updateListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	in, err := req.toInput()
	if err != nil {
		return err
	}

	listing, err := h.service.Update(c.Request().Context(), p, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listingResponse{
		Success: true,
		Message: "listing updated",
		Listing: listing,
	})
}

// Delete handles DELETE /products/:id.
//
// @Summary      Delete a listing
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Listing ID"
// @Success      200  {object}  listingResponse
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /products/{id} [delete]
func (h *ListingHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listingResponse{Success: true, Message: "listing deleted"})
}

// Moderate handles PATCH /products/admin/status/:id, an admin moderation
// decision validated against the status state machine.
//
// @Summary      Apply a moderation decision
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Listing ID"
// @Param        body  body      moderationRequest  true  "Target status"
// @Success      200   {object}  listingResponse
// @Failure      403   {object}  map[string]any
// @Failure      422   {object}  map[string]any
// @Router       /products/admin/status/{id} [patch]
func (h *ListingHandler) Moderate(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req moderationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	next, ok := domain.ParseListingStatus(req.Status)
	if !ok {
		return errUnknownStatus(req.Status)
	}

	listing, err := h.service.Transition(c.Request().Context(), p, c.Param("id"), next)
	if err != nil {
		return err
	}

	metrics.ModerationDecisionsTotal.WithLabelValues(string(listing.Status)).Inc()
	return c.JSON(http.StatusOK, listingResponse{
		Success: true,
		Message: "status updated",
		Listing: listing,
	})
}

// countUploadRejection maps an image-store error to its metric label.
func countUploadRejection(err error) {
	switch {
	case errors.Is(err, domain.ErrFileTooLarge):
		metrics.UploadsRejectedTotal.WithLabelValues("too_large").Inc()
	case errors.Is(err, domain.ErrTooManyFiles):
		metrics.UploadsRejectedTotal.WithLabelValues("too_many").Inc()
	case errors.Is(err, domain.ErrUnsupportedFileType):
		metrics.UploadsRejectedTotal.WithLabelValues("unsupported_type").Inc()
	}
}
