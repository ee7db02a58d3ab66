package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/marketprime/marketplace-api/internal/core/domain"
	"github.com/marketprime/marketplace-api/internal/core/ports"
)

// ImageStore saves uploaded listing images and returns stable references.
// Remove is best effort and used to undo a save when the listing itself
// fails to persist.
type ImageStore interface {
	Save(files []*multipart.FileHeader) ([]string, error)
	Remove(refs []string)
}

// createListingForm is the multipart create payload. Scalar fields arrive as
// form values, images as file parts under the "images" field.
type createListingForm struct {
	Name         string   `form:"name" validate:"required"`
	Description  string   `form:"description" validate:"required"`
	Age          string   `form:"age"`
	City         string   `form:"city" validate:"required"`
	State        string   `form:"state"`
	PhoneNo      string   `form:"phone_no" validate:"required"`
	WhatsappNo   string   `form:"whatsapp_no"`
	HourlyRate   float64  `form:"hourly_rate"`
	NightRate    float64  `form:"night_rate"`
	Services     []string `form:"services"`
	Availability string   `form:"availability"`
}

// updateListingRequest carries a partial update. Absent fields stay nil and
// are skipped by the merge; status, verified and featured only take effect
// for admin principals.
type updateListingRequest struct {
	Name         *string   `json:"name"`
	Description  *string   `json:"description"`
	Age          *string   `json:"age"`
	City         *string   `json:"city"`
	State        *string   `json:"state"`
	PhoneNo      *string   `json:"phone_no"`
	WhatsappNo   *string   `json:"whatsapp_no"`
	HourlyRate   *float64  `json:"hourly_rate"`
	NightRate    *float64  `json:"night_rate"`
	Services     *[]string `json:"services"`
	Availability *string   `json:"availability"`
	Status       *string   `json:"status"`
	Verified     *bool     `json:"verified"`
	Featured     *bool     `json:"featured"`
}

func (r *updateListingRequest) toInput() (ports.UpdateListingInput, error) {
	in := ports.UpdateListingInput{
		Name:         r.Name,
		Description:  r.Description,
		Age:          r.Age,
		City:         r.City,
		State:        r.State,
		PhoneNo:      r.PhoneNo,
		WhatsappNo:   r.WhatsappNo,
		HourlyRate:   r.HourlyRate,
		NightRate:    r.NightRate,
		Services:     r.Services,
		Availability: r.Availability,
		Verified:     r.Verified,
		Featured:     r.Featured,
	}
	if r.Status != nil {
		status, ok := domain.ParseListingStatus(*r.Status)
		if !ok {
			return in, errUnknownStatus(*r.Status)
		}
		in.Status = &status
	}
	return in, nil
}

type moderationRequest struct {
	Status string `json:"status" validate:"required"`
}

type listingResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Listing *domain.Listing `json:"listing"`
}

type listingsResponse struct {
	Success  bool              `json:"success"`
	Count    int               `json:"count"`
	Listings []*domain.Listing `json:"listings"`
}

func errUnknownStatus(raw string) error {
	return echo.NewHTTPError(http.StatusBadRequest, "unknown status value: "+raw)
}
