package model

import "time"

// Activity is a logged event for a pet: a walk, a meal, a vet visit.
//
// Type and Title are always set on a stored activity. The caller may supply
// them directly, or supply only a free-text Description and let the AI
// adapter derive them — with a deterministic fallback when the AI is absent
// (type "other", title = description truncated to 50 chars).
type Activity struct {
	ID           int64        `json:"id"`
	PetID        int64        `json:"petId"`
	Type         ActivityType `json:"activityType"`
	Title        string       `json:"title"`
	Description  *string      `json:"description,omitempty"`
	Duration     *int         `json:"duration,omitempty"` // minutes
	Distance     *float64     `json:"distance,omitempty"` // miles, walks only
	Notes        *string      `json:"notes,omitempty"`
	ActivityDate time.Time    `json:"activityDate"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Medication is a prescription record for a pet. Name, dosage and frequency
// are required short strings ("Apoquel", "16mg", "twice daily").
type Medication struct {
	ID             int64      `json:"id"`
	PetID          int64      `json:"petId"`
	Name           string     `json:"name"`
	Dosage         string     `json:"dosage"`
	Frequency      string     `json:"frequency"`
	Route          *string    `json:"route,omitempty"` // oral, topical, injection
	Reason         *string    `json:"reason,omitempty"`
	PrescribingVet *string    `json:"prescribingVet,omitempty"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	IsActive       bool       `json:"isActive"`
	Notes          *string    `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Reminder is owned directly by a user. PetID is optional — "order more
// litter" needs no pet — but when set it must reference a pet owned by the
// same user. That cross-check lives in the service layer.
type Reminder struct {
	ID           int64        `json:"id"`
	UserID       string       `json:"userId"`
	PetID        *int64       `json:"petId,omitempty"`
	Title        string       `json:"title"`
	Description  *string      `json:"description,omitempty"`
	Type         ReminderType `json:"reminderType"`
	ReminderDate time.Time    `json:"reminderDate"`
	IsCompleted  bool         `json:"isCompleted"`
	CreatedAt    time.Time    `json:"createdAt"`
}
