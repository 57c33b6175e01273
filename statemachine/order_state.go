package statemachine

import (
	"errors"

	"restora-api/models"
)

// Transition defines a valid status change and who can perform it
type Transition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor models.UserRole
}

// validTransitions is the authoritative lifecycle definition. Completed and
// cancelled are terminal; admins may additionally force any change.
var validTransitions = []Transition{
	{From: models.StatusPending, To: models.StatusCompleted, Actor: models.RoleStaff},
	{From: models.StatusPending, To: models.StatusCompleted, Actor: models.RoleAdmin},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: models.RoleStaff},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: models.RoleAdmin},
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor models.UserRole
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// Transitions returns the full transition table for informational purposes
func Transitions() []Transition {
	out := make([]Transition, len(validTransitions))
	copy(out, validTransitions)
	return out
}

// ValidTransitionsFrom returns all valid next statuses from a given status
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move an order between statuses
func CanTransition(from, to models.OrderStatus, actor models.UserRole) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " -> " + string(to) +
			" is not allowed for role '" + string(actor) + "'")
}
