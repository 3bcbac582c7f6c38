package entity

import (
	"errors"
	"fmt"
)

// ErrInvalidStatus is returned for a status value outside its closed set.
var ErrInvalidStatus = errors.New("invalid status")

// ErrInvalidTransition is returned when a status change is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions lists the states reachable from each state. Terminal states map to nil.
type transitions[S ~string] map[S][]S

func (t transitions[S]) valid(s S) bool {
	_, ok := t[s]
	return ok
}

func (t transitions[S]) check(from, to S) error {
	if !t.valid(to) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if from == to {
		return nil
	}
	for _, next := range t[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "draft"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

var projectTransitions = transitions[ProjectStatus]{
	ProjectDraft:     {ProjectActive, ProjectCancelled},
	ProjectActive:    {ProjectOnHold, ProjectCompleted, ProjectCancelled},
	ProjectOnHold:    {ProjectActive, ProjectCancelled},
	ProjectCompleted: nil,
	ProjectCancelled: nil,
}

// Valid reports whether s belongs to the project status set.
func (s ProjectStatus) Valid() bool { return projectTransitions.valid(s) }

// TransitionTo validates moving from s to next.
func (s ProjectStatus) TransitionTo(next ProjectStatus) error {
	return projectTransitions.check(s, next)
}

// Initial reports whether a project may be created in state s.
func (s ProjectStatus) Initial() bool { return s == ProjectDraft || s == ProjectActive }

// BuyerStatus is the buyer-side lifecycle of an auction.
type BuyerStatus string

const (
	BuyerDraft     BuyerStatus = "draft"
	BuyerPublished BuyerStatus = "published"
	BuyerClosed    BuyerStatus = "closed"
	BuyerCancelled BuyerStatus = "cancelled"
)

var buyerTransitions = transitions[BuyerStatus]{
	BuyerDraft:     {BuyerPublished, BuyerCancelled},
	BuyerPublished: {BuyerClosed, BuyerCancelled},
	BuyerClosed:    nil,
	BuyerCancelled: nil,
}

func (s BuyerStatus) Valid() bool { return buyerTransitions.valid(s) }

func (s BuyerStatus) TransitionTo(next BuyerStatus) error {
	return buyerTransitions.check(s, next)
}

// SupplierStatus is a supplier's answer to an auction invitation.
type SupplierStatus string

const (
	SupplierPending  SupplierStatus = "pending"
	SupplierAccepted SupplierStatus = "accepted"
	SupplierDeclined SupplierStatus = "declined"
)

var supplierTransitions = transitions[SupplierStatus]{
	SupplierPending:  {SupplierAccepted, SupplierDeclined},
	SupplierAccepted: nil,
	SupplierDeclined: nil,
}

func (s SupplierStatus) Valid() bool { return supplierTransitions.valid(s) }

func (s SupplierStatus) TransitionTo(next SupplierStatus) error {
	return supplierTransitions.check(s, next)
}

// ItemStatus is the catalogue state of an item.
type ItemStatus string

const (
	ItemDraft    ItemStatus = "draft"
	ItemActive   ItemStatus = "active"
	ItemArchived ItemStatus = "archived"
)

var itemTransitions = transitions[ItemStatus]{
	ItemDraft:    {ItemActive, ItemArchived},
	ItemActive:   {ItemArchived},
	ItemArchived: {ItemActive},
}

func (s ItemStatus) Valid() bool { return itemTransitions.valid(s) }

func (s ItemStatus) TransitionTo(next ItemStatus) error {
	return itemTransitions.check(s, next)
}
