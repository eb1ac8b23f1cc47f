package model

import "time"

// Pet is the central entity: every activity, medication and reminder hangs
// off a pet, and every pet hangs off its owning user.
//
// UserID is set once at creation from the authenticated caller and is never
// updatable — there is no "transfer pet" operation.
//
// Optional fields are pointers so that "absent" and "zero" stay
// distinguishable, both in PATCH payloads and in the database (NULL vs 0).
type Pet struct {
	ID             int64      `json:"id"`
	UserID         string     `json:"userId"`
	Name           string     `json:"name"`
	Species        Species    `json:"species"`
	Breed          *string    `json:"breed,omitempty"`
	SecondaryBreed *string    `json:"secondaryBreed,omitempty"`
	TertiaryBreed  *string    `json:"tertiaryBreed,omitempty"`
	BreedType      *BreedType `json:"breedType,omitempty"`
	Sex            *Sex       `json:"sex,omitempty"`
	Birthday       *time.Time `json:"birthday,omitempty"`
	Age            *int       `json:"age,omitempty"`    // years
	Weight         *float64   `json:"weight,omitempty"` // pounds
	MedicalNotes   *string    `json:"medicalNotes,omitempty"`
	AICareTips     *string    `json:"aiCareTips,omitempty"` // regenerable, nullable
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
