package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/minhvo/cafe-pos/internal/model"
)

// PaymentFinalizer performs checkout: record the payment, close the
// order, free the table, as one all-or-nothing unit. The store's
// transaction carries the atomicity; the finalizer validates input and
// normalizes the method.
type PaymentFinalizer struct {
	checkout CheckoutStore
}

// NewPaymentFinalizer constructs a PaymentFinalizer over the given
// store.
func NewPaymentFinalizer(checkout CheckoutStore) *PaymentFinalizer {
	return &PaymentFinalizer{checkout: checkout}
}

// Finalize settles the order with the given method ("CASH" or
// "TRANSFER", case-insensitive). The paid amount is the order's line
// total at the instant of the transaction. Exactly one of N concurrent
// calls succeeds; the others get repository.ErrAlreadyPaid. An order
// without lines fails with repository.ErrEmptyOrder, and any failure
// leaves the order open and the table in use so the call can be
// retried.
func (s *PaymentFinalizer) Finalize(ctx context.Context, orderID uint64, method string) (model.Payment, error) {
	m := strings.ToUpper(strings.TrimSpace(method))
	if !model.ValidPaymentMethod(m) {
		return model.Payment{}, fmt.Errorf("%w: unknown payment method %q", ErrValidation, method)
	}
	return s.checkout.Finalize(ctx, orderID, m)
}
