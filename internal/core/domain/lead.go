package domain

import (
	"errors"
	"time"
)

// LeadStatus tracks how far a contact-form submission has progressed. The
// states are not a strict pipeline: an admin may move a lead between any of
// them while working it.
type LeadStatus string

const (
	LeadPending   LeadStatus = "pending"
	LeadContacted LeadStatus = "contacted"
	LeadClosed    LeadStatus = "closed"
)

var ErrLeadNotFound = errors.New("lead not found")

// ParseLeadStatus validates a raw lead status value.
func ParseLeadStatus(raw string) (LeadStatus, bool) {
	switch LeadStatus(raw) {
	case LeadPending, LeadContacted, LeadClosed:
		return LeadStatus(raw), true
	}
	return "", false
}

// Lead is a contact-form submission. Reporter contact details are captured
// verbatim alongside the owning account reference.
type Lead struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	Name      string     `json:"name" bson:"name"`
	Message   string     `json:"message" bson:"message"`
	PhoneNo   string     `json:"phone_no" bson:"phone_no"`
	Location  string     `json:"location,omitempty" bson:"location,omitempty"`
	City      string     `json:"city" bson:"city"`
	State     string     `json:"state,omitempty" bson:"state,omitempty"`
	OwnerID   string     `json:"owner_id" bson:"owner_id"`
	UserName  string     `json:"user_name" bson:"user_name"`
	UserEmail string     `json:"user_email" bson:"user_email"`
	Status    LeadStatus `json:"status" bson:"status"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}
