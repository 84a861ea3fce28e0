package services

import (
	"errors"
	"net/http"
)

// ErrPaymentDeclined is wrapped by gateways when the provider rejected the
// customer's payment method.
var ErrPaymentDeclined = errors.New("payment declined")

// ErrorKind classifies why a checkout did not produce a session.
type ErrorKind string

const (
	KindInvalidBody     ErrorKind = "invalid_body"
	KindEmptyCart       ErrorKind = "empty_cart"
	KindMissingAddress  ErrorKind = "missing_address"
	KindInvalidItem     ErrorKind = "invalid_item"
	KindPaymentDeclined ErrorKind = "payment_declined"
	KindRemoteFailure   ErrorKind = "remote_failure"
)

// Client-facing messages.
const (
	MsgInvalidBody     = "Invalid request body."
	MsgEmptyCart       = "Cart is empty."
	MsgMissingAddress  = "Address is required."
	MsgInvalidItem     = "Invalid item format in cart."
	MsgPaymentDeclined = "Your card was declined. Please try a different payment method."
	MsgInternal        = "Internal Server Error. Please try again later."
)

// CheckoutError is the failure result of a checkout. Message is safe to show
// to the caller; Err is for logs only.
type CheckoutError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *CheckoutError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CheckoutError) Unwrap() error { return e.Err }

// StatusCode maps the kind to an HTTP status. Everything the client can fix,
// including a declined card, is a 400.
func (e *CheckoutError) StatusCode() int {
	switch e.Kind {
	case KindInvalidBody, KindEmptyCart, KindMissingAddress, KindInvalidItem, KindPaymentDeclined:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether the failure was caused by the request rather
// than by this service or its upstream.
func (e *CheckoutError) IsClientError() bool {
	return e.StatusCode() < http.StatusInternalServerError
}

func newCheckoutError(kind ErrorKind, msg string, err error) *CheckoutError {
	return &CheckoutError{Kind: kind, Message: msg, Err: err}
}

// InvalidBodyError wraps a JSON decoding failure.
func InvalidBodyError(err error) *CheckoutError {
	return newCheckoutError(KindInvalidBody, MsgInvalidBody, err)
}
