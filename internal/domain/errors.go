package domain

import (
	"errors"
	"fmt"
)

// Error message string constants - single source of truth for error messages.
// Use these in assert.Contains() checks when testing error messages.
const (
	ErrMsgNotFound          = "not found"
	ErrMsgInvalidInput      = "invalid input"
	ErrMsgInsufficientStock = "insufficient card stock"
	ErrMsgInsufficientFunds = "insufficient funds"
	ErrMsgLevelLocked       = "level not high enough"
	ErrMsgSelfTrade         = "cannot trade with yourself"
	ErrMsgRateLimited       = "daily trade limit reached"
	ErrMsgLackOfMaterials   = "lack of materials"
	ErrMsgLackOfCards       = "lack of cards"
	ErrMsgNotComposable     = "card cannot be composed"
	ErrMsgNotDecomposable   = "card cannot be decomposed"
	ErrMsgNoEligibleCards   = "no eligible cards for draw"
	ErrMsgTxClosed          = "tx is closed"
)

// Expected business outcomes. Every one of these leaves state unchanged.
// Wrap with fmt.Errorf("%w: detail", domain.ErrXxx) for additional context.
var (
	ErrNotFound          = errors.New(ErrMsgNotFound)
	ErrInvalidInput      = errors.New(ErrMsgInvalidInput)
	ErrInsufficientStock = errors.New(ErrMsgInsufficientStock)
	ErrInsufficientFunds = errors.New(ErrMsgInsufficientFunds)
	ErrLevelLocked       = errors.New(ErrMsgLevelLocked)
	ErrSelfTrade         = errors.New(ErrMsgSelfTrade)
	ErrRateLimited       = errors.New(ErrMsgRateLimited)
	ErrLackOfMaterials   = errors.New(ErrMsgLackOfMaterials)
	ErrLackOfCards       = errors.New(ErrMsgLackOfCards)
	ErrNotComposable     = errors.New(ErrMsgNotComposable)
	ErrNotDecomposable   = errors.New(ErrMsgNotDecomposable)
	ErrNoEligibleCards   = errors.New(ErrMsgNoEligibleCards)
)

// InsufficientFundsError carries the total amount the operation would have
// cost. errors.Is(err, ErrInsufficientFunds) matches it.
type InsufficientFundsError struct {
	Needed int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: need %d", ErrMsgInsufficientFunds, e.Needed)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// LevelLockedError carries the unlock level the player has not reached.
// errors.Is(err, ErrLevelLocked) matches it.
type LevelLockedError struct {
	UnlockLevel int
}

func (e *LevelLockedError) Error() string {
	return fmt.Sprintf("%s: requires level %d", ErrMsgLevelLocked, e.UnlockLevel)
}

func (e *LevelLockedError) Is(target error) bool {
	return target == ErrLevelLocked
}

// RateLimitError carries the configured trailing-24h purchase limit.
// errors.Is(err, ErrRateLimited) matches it.
type RateLimitError struct {
	Limit int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: limit %d per 24h", ErrMsgRateLimited, e.Limit)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// Shortfall is one missing material or card in an itemized shortfall list.
type Shortfall struct {
	CardID  int64 `json:"card_id"`
	Missing int64 `json:"missing"`
}

// ShortfallError reports every missing card of a compose or order-fulfillment
// attempt, not just the first. Sentinel is ErrLackOfMaterials for compose and
// ErrLackOfCards for order delivery.
type ShortfallError struct {
	Sentinel error
	Items    []Shortfall
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("%s: %d card(s) short", e.Sentinel.Error(), len(e.Items))
}

func (e *ShortfallError) Is(target error) bool {
	return target == e.Sentinel
}
