package report

import (
	"errors"
	"fmt"
	"time"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func NewIndexedValidationError(index int, msg string) error {
	return &ValidationError{Msg: fmt.Sprintf("Validation error at transaction %d: %s", index, msg)}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

// OversellError signals that a sale consumed more quantity than the open lots
// could cover at that point of the chronological sequence. It aborts the whole
// report: fabricating a zero-cost trade would corrupt every downstream figure.
type OversellError struct {
	OwnerID           string
	Asset             string
	Currency          string
	UnmatchedQuantity float64
	SaleDate          time.Time
}

func (e *OversellError) Error() string {
	return fmt.Sprintf("oversell detected for %s (%s, owner %s): %g units sold on %s without a matching purchase",
		e.Asset, e.Currency, e.OwnerID, e.UnmatchedQuantity, e.SaleDate.Format("2006-01-02"))
}

func IsOversellError(err error) bool {
	var oversellError *OversellError
	return errors.As(err, &oversellError)
}
