// Package model defines the data structures used throughout the application.
package model

import "strings"

// CLOSED ENUM TYPES:
// Species, Sex, BreedType, ActivityType and ReminderType are defined types
// over string rather than validated free strings. Any switch over them is
// exhaustive by construction, and an invalid value can only enter the
// system through the Parse functions below — which is the single place
// where case normalisation happens.

// Species is the kind of animal a pet is.
type Species string

const (
	SpeciesDog       Species = "dog"
	SpeciesCat       Species = "cat"
	SpeciesBird      Species = "bird"
	SpeciesFish      Species = "fish"
	SpeciesRabbit    Species = "rabbit"
	SpeciesHamster   Species = "hamster"
	SpeciesGuineaPig Species = "guinea pig"
	SpeciesReptile   Species = "reptile"
	SpeciesOther     Species = "other"
)

// ParseSpecies normalises the input to lowercase and reports whether it is
// one of the allowed species.
func ParseSpecies(s string) (Species, bool) {
	sp := Species(strings.ToLower(strings.TrimSpace(s)))
	switch sp {
	case SpeciesDog, SpeciesCat, SpeciesBird, SpeciesFish, SpeciesRabbit,
		SpeciesHamster, SpeciesGuineaPig, SpeciesReptile, SpeciesOther:
		return sp, true
	}
	return "", false
}

// Sex is a pet's sex. Unknown is a valid, deliberate value — not an
// absence of data.
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

func ParseSex(s string) (Sex, bool) {
	sx := Sex(strings.ToLower(strings.TrimSpace(s)))
	switch sx {
	case SexMale, SexFemale, SexUnknown:
		return sx, true
	}
	return "", false
}

// BreedType says whether the breed fields describe a purebred or a mix.
type BreedType string

const (
	BreedPurebred BreedType = "purebred"
	BreedMix      BreedType = "mix"
)

func ParseBreedType(s string) (BreedType, bool) {
	bt := BreedType(strings.ToLower(strings.TrimSpace(s)))
	switch bt {
	case BreedPurebred, BreedMix:
		return bt, true
	}
	return "", false
}

// ActivityType categorises a logged activity. The AI adapter is constrained
// to this same set when it derives the type from free text; anything it
// returns outside the set collapses to ActivityOther.
type ActivityType string

const (
	ActivityWalk       ActivityType = "walk"
	ActivityFeeding    ActivityType = "feeding"
	ActivityMedication ActivityType = "medication"
	ActivityVetVisit   ActivityType = "vet_visit"
	ActivityGrooming   ActivityType = "grooming"
	ActivityPlay       ActivityType = "play"
	ActivityTraining   ActivityType = "training"
	ActivityOther      ActivityType = "other"
)

func ParseActivityType(s string) (ActivityType, bool) {
	at := ActivityType(strings.ToLower(strings.TrimSpace(s)))
	switch at {
	case ActivityWalk, ActivityFeeding, ActivityMedication, ActivityVetVisit,
		ActivityGrooming, ActivityPlay, ActivityTraining, ActivityOther:
		return at, true
	}
	return "", false
}

// ReminderType categorises a reminder.
type ReminderType string

const (
	ReminderMedication   ReminderType = "medication"
	ReminderAppointment  ReminderType = "appointment"
	ReminderVaccination  ReminderType = "vaccination"
	ReminderGrooming     ReminderType = "grooming"
	ReminderOtherType    ReminderType = "other"
)

func ParseReminderType(s string) (ReminderType, bool) {
	rt := ReminderType(strings.ToLower(strings.TrimSpace(s)))
	switch rt {
	case ReminderMedication, ReminderAppointment, ReminderVaccination,
		ReminderGrooming, ReminderOtherType:
		return rt, true
	}
	return "", false
}
