package domain

import (
	"errors"
	"time"
)

// ListingStatus represents the moderation state of a listing.
type ListingStatus string

const (
	StatusPending  ListingStatus = "Pending"
	StatusApproved ListingStatus = "Approved"
	StatusRejected ListingStatus = "Rejected"
	StatusDone     ListingStatus = "Done"
)

// validModeration defines the allowed moderation transitions. Rejected and
// Done are terminal.
var validModeration = map[ListingStatus][]ListingStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusDone},
}

var ErrListingNotFound = errors.New("listing not found")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrInvalidID = errors.New("malformed identifier")

// Upload constraint violations surfaced by the image store.
var ErrFileTooLarge = errors.New("file exceeds size limit")
var ErrTooManyFiles = errors.New("too many files")
var ErrUnsupportedFileType = errors.New("unsupported file type")

// CanTransitionTo reports whether a moderation transition from s to next is valid.
func (s ListingStatus) CanTransitionTo(next ListingStatus) bool {
	for _, allowed := range validModeration[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseListingStatus validates a raw status value.
func ParseListingStatus(raw string) (ListingStatus, bool) {
	switch ListingStatus(raw) {
	case StatusPending, StatusApproved, StatusRejected, StatusDone:
		return ListingStatus(raw), true
	}
	return "", false
}

// CreatorRole records which kind of principal authored a listing. Stamped at
// creation time and immutable afterwards.
type CreatorRole string

const (
	CreatedByUser  CreatorRole = "User"
	CreatedByAdmin CreatorRole = "Admin"
)

// InitialStatus returns the status a freshly created listing starts in:
// admin-authored listings skip the moderation queue.
func (r CreatorRole) InitialStatus() ListingStatus {
	if r == CreatedByAdmin {
		return StatusApproved
	}
	return StatusPending
}

// Listing is a marketplace item submitted for moderation. OwnerName and
// OwnerEmail are denormalised from the owning account at creation time so
// list responses need no second lookup.
type Listing struct {
	ID            string        `json:"id" bson:"_id,omitempty"`
	Name          string        `json:"name" bson:"name"`
	Description   string        `json:"description" bson:"description"`
	Age           string        `json:"age,omitempty" bson:"age,omitempty"`
	City          string        `json:"city" bson:"city"`
	State         string        `json:"state" bson:"state"`
	PhoneNo       string        `json:"phone_no" bson:"phone_no"`
	WhatsappNo    string        `json:"whatsapp_no,omitempty" bson:"whatsapp_no,omitempty"`
	HourlyRate    float64       `json:"hourly_rate" bson:"hourly_rate"`
	NightRate     float64       `json:"night_rate" bson:"night_rate"`
	Services      []string      `json:"services" bson:"services"`
	Availability  string        `json:"availability,omitempty" bson:"availability,omitempty"`
	Verified      bool          `json:"verified" bson:"verified"`
	Featured      bool          `json:"featured" bson:"featured"`
	Images        []string      `json:"images" bson:"images"`
	OwnerID       string        `json:"owner_id" bson:"owner_id"`
	OwnerName     string        `json:"owner_name" bson:"owner_name"`
	OwnerEmail    string        `json:"owner_email" bson:"owner_email"`
	CreatedByRole CreatorRole   `json:"created_by_role" bson:"created_by_role"`
	Status        ListingStatus `json:"status" bson:"status"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" bson:"updated_at"`
}
