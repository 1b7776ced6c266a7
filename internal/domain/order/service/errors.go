package service

import "thywilluche/pkg/response"

var (
	ErrOrderNotFound       = response.NewNotFound(response.ErrOrderNotFound, "order not found")
	ErrVariantNotFound     = response.NewNotFound(response.ErrVariantNotFound, "variant not found")
	ErrVariantNotForSale   = response.NewValidation(response.ErrVariantNotForSale, "variant is not available for sale")
	ErrOutOfStock          = response.NewConflict(response.ErrOutOfStock, "not enough stock")
	ErrInvalidItems        = response.NewValidation(response.ErrValidation, "an order needs 1 to 20 items with quantity between 1 and 99")
	ErrInvalidProductType  = response.NewValidation(response.ErrValidation, "product type must be book or merch")
	ErrInvalidOrderStatus  = response.NewValidation(response.ErrValidation, "invalid order status")
	ErrInvalidPayment      = response.NewValidation(response.ErrValidation, "invalid payment status")
	ErrEmptyUpdate         = response.NewValidation(response.ErrValidation, "nothing to update")
	ErrPaymentChannel      = response.NewValidation(response.ErrPaymentChannel, "unsupported payment channel")
	ErrOrderNotPayable     = response.NewConflict(response.ErrInvalidOrderState, "order cannot be paid")
	ErrPaymentAmount       = response.NewValidation(response.ErrPaymentChannel, "paid amount does not match order total")
	ErrPaidAfterCancel     = response.NewConflict(response.ErrInvalidOrderState, "payment received for a cancelled order")
)
