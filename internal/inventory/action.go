package inventory

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Action is a stock adjustment kind.
type Action string

const (
	ActionIncrease Action = "increase"
	ActionDecrease Action = "decrease"
	ActionSet      Action = "set"
)

// MaxStock is the largest stock a product can hold. The stock column is a
// 32-bit integer on PostgreSQL.
const MaxStock = math.MaxInt32

// ParseAction normalizes user input. An empty string yields ("", nil) so the
// scan path can ask the operator for an action.
func ParseAction(raw string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return "", nil
	case "increase", "add", "in", "ajouter":
		return ActionIncrease, nil
	case "decrease", "remove", "out", "retirer":
		return ActionDecrease, nil
	case "set", "definir", "définir":
		return ActionSet, nil
	}
	return "", ErrInvalidAction
}

// Apply computes the stock that results from applying a to current.
// The result always lies in [0, MaxStock].
func (a Action) Apply(current, quantity int) (int, error) {
	switch a {
	case ActionIncrease:
		if quantity <= 0 || quantity > MaxStock-current {
			return current, ErrInvalidQuantity
		}
		return current + quantity, nil
	case ActionDecrease:
		if quantity <= 0 {
			return current, ErrInvalidQuantity
		}
		if current < quantity {
			return current, ErrInsufficientStock
		}
		return current - quantity, nil
	case ActionSet:
		if quantity < 0 {
			return current, ErrInsufficientStock
		}
		if quantity > MaxStock {
			return current, ErrInvalidQuantity
		}
		return quantity, nil
	}
	return current, ErrInvalidAction
}

// Verb is the past-tense phrase used in summaries.
func (a Action) Verb(quantity int) string {
	switch a {
	case ActionIncrease:
		return "added " + strconv.Itoa(quantity)
	case ActionDecrease:
		return "removed " + strconv.Itoa(quantity)
	case ActionSet:
		return "set to " + strconv.Itoa(quantity)
	}
	return string(a)
}

// Outcome is the caller-visible result of a scan or adjustment.
type Outcome string

const (
	OutcomeSuccess           Outcome = "success"
	OutcomeNotFound          Outcome = "not_found"
	OutcomeInsufficientStock Outcome = "insufficient_stock"
	OutcomeAwaitingAction    Outcome = "awaiting_action"
	OutcomeInvalidAction     Outcome = "invalid_action"
	OutcomeInvalidQuantity   Outcome = "invalid_quantity"
	OutcomeStorageError      Outcome = "storage_error"
)

// OutcomeOf maps an error returned by the workflow to its Outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case IsNotFound(err):
		return OutcomeNotFound
	case errors.Is(err, ErrInsufficientStock):
		return OutcomeInsufficientStock
	case errors.Is(err, ErrInvalidAction):
		return OutcomeInvalidAction
	case errors.Is(err, ErrInvalidQuantity):
		return OutcomeInvalidQuantity
	}
	return OutcomeStorageError
}
