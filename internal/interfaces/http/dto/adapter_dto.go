package dto

import (
	"github.com/bookingplatform/backend/internal/domain/integration"
	"github.com/shopspring/decimal"
)

// CheckoutLineRequest is one line of a checkout or sale body.
// Quantity is checked by the dispatcher so a bad value surfaces as a line outcome.
type CheckoutLineRequest struct {
	ProductID      int64           `json:"productId" binding:"required,gt=0"`
	Quantity       int             `json:"quantity"`
	ItemTotalPrice decimal.Decimal `json:"itemTotalPrice"`
}

// ToDomain converts the line into a dispatcher request
func (r CheckoutLineRequest) ToDomain() integration.CheckoutRequest {
	return integration.CheckoutRequest{
		ProductID:      r.ProductID,
		Quantity:       r.Quantity,
		ItemTotalPrice: r.ItemTotalPrice,
	}
}

// SaleRequestToDomain converts a sale body into dispatcher requests
func SaleRequestToDomain(lines []CheckoutLineRequest) []integration.CheckoutRequest {
	reqs := make([]integration.CheckoutRequest, len(lines))
	for i, line := range lines {
		reqs[i] = line.ToDomain()
	}
	return reqs
}

// CheckoutResponse is the body of a single-line checkout
type CheckoutResponse struct {
	Success bool                    `json:"success"`
	Outcome integration.LineOutcome `json:"outcome"`
}

// AdapterListResponse lists the registered provider names
type AdapterListResponse struct {
	Adapters []string `json:"adapters"`
}
