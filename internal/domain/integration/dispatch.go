package integration

import (
	"errors"

	"github.com/bookingplatform/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Dispatch value objects
// ---------------------------------------------------------------------------

// CheckoutRequest is one line of a checkout or sale request.
type CheckoutRequest struct {
	ProductID      int64           `json:"productId"`
	Quantity       int             `json:"quantity"`
	ItemTotalPrice decimal.Decimal `json:"itemTotalPrice"`
}

// OutcomeStatus is the terminal state of a dispatched line item
type OutcomeStatus string

const (
	// OutcomeSold means the line was accepted or committed
	OutcomeSold OutcomeStatus = "SOLD"
	// OutcomeRejected means a business-level refusal (stock, partner said no)
	OutcomeRejected OutcomeStatus = "REJECTED"
	// OutcomeFailed means a fault (missing product, configuration, transport, store)
	OutcomeFailed OutcomeStatus = "FAILED"
)

// Reason classifies why a line was not sold
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonNotFound              Reason = "NOT_FOUND"
	ReasonConfiguration         Reason = "CONFIGURATION"
	ReasonInsufficientInventory Reason = "INSUFFICIENT_INVENTORY"
	ReasonUpstream              Reason = "UPSTREAM"
	ReasonPersistence           Reason = "PERSISTENCE"
	ReasonInvalidQuantity       Reason = "INVALID_QUANTITY"
)

// ReasonOf maps a taxonomy error to its reason code
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, catalog.ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, catalog.ErrConfiguration):
		return ReasonConfiguration
	case errors.Is(err, catalog.ErrInsufficientInventory):
		return ReasonInsufficientInventory
	case errors.Is(err, catalog.ErrUpstream):
		return ReasonUpstream
	case errors.Is(err, catalog.ErrInvalidQuantity):
		return ReasonInvalidQuantity
	default:
		return ReasonPersistence
	}
}

// LineOutcome is the result of dispatching one line item
type LineOutcome struct {
	ProductID int64         `json:"productId"`
	Provider  string        `json:"provider,omitempty"`
	Status    OutcomeStatus `json:"status"`
	Reason    Reason        `json:"reason,omitempty"`
	Err       error         `json:"-"`
}

// Sold builds a successful outcome
func Sold(productID int64, provider string) LineOutcome {
	return LineOutcome{ProductID: productID, Provider: provider, Status: OutcomeSold}
}

// Rejected builds a business-refusal outcome
func Rejected(productID int64, provider string, err error) LineOutcome {
	return LineOutcome{ProductID: productID, Provider: provider, Status: OutcomeRejected, Reason: ReasonOf(err), Err: err}
}

// Failed builds a fault outcome
func Failed(productID int64, provider string, err error) LineOutcome {
	return LineOutcome{ProductID: productID, Provider: provider, Status: OutcomeFailed, Reason: ReasonOf(err), Err: err}
}

// IsSold reports whether the line was sold
func (o LineOutcome) IsSold() bool {
	return o.Status == OutcomeSold
}

// SaleResult aggregates the outcomes of a batch sale.
// Success is true iff every line was sold.
type SaleResult struct {
	Success bool          `json:"success"`
	Items   []LineOutcome `json:"items"`
}

// NewSaleResult builds a result from per-line outcomes
func NewSaleResult(items []LineOutcome) *SaleResult {
	success := len(items) > 0
	for _, item := range items {
		if !item.IsSold() {
			success = false
		}
	}
	return &SaleResult{Success: success, Items: items}
}

// SoldCount returns the number of sold lines
func (r *SaleResult) SoldCount() int {
	n := 0
	for _, item := range r.Items {
		if item.IsSold() {
			n++
		}
	}
	return n
}
