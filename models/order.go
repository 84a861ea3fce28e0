package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Currency            = "inr"
	PaymentMethodCard   = "card"
	CheckoutModePayment = "payment"

	// MaxAddressLength is the longest address forwarded as session metadata.
	MaxAddressLength = 450

	// MaxUnitAmount is the largest unit_amount Stripe accepts (8 digits).
	MaxUnitAmount = 99999999
)

var ErrAmountOverflow = errors.New("amount total overflows int64")

// ItemID accepts both JSON strings and JSON numbers. Storefronts send either.
type ItemID string

func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id must be a string or number: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// CartItem is one line of the storefront cart. Pointer fields distinguish
// "absent" from "zero".
type CartItem struct {
	ID       ItemID           `json:"id" validate:"required"`
	Name     string           `json:"name" validate:"required"`
	Price    *decimal.Decimal `json:"price" validate:"required,gt=0"`
	Quantity *int64           `json:"quantity" validate:"required,gte=1"`
}

// OrderRequest is the body of POST /order. Both fields stay raw so a wrong
// type on one of them cannot hide a violation that is checked earlier.
type OrderRequest struct {
	Items   json.RawMessage `json:"items"`
	Address json.RawMessage `json:"address"`
}

// CartEntries returns the raw cart items. isArray is false when items holds
// something other than an array; absent, null, false, 0 and "" count as an
// empty array.
func (r *OrderRequest) CartEntries() (entries []json.RawMessage, isArray bool) {
	switch string(bytes.TrimSpace(r.Items)) {
	case "", "null", "false", "0", `""`:
		return nil, true
	}
	if err := json.Unmarshal(r.Items, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// AddressText returns the address, or "" when it is absent or not a string.
func (r *OrderRequest) AddressText() string {
	var address string
	if len(r.Address) == 0 {
		return ""
	}
	if err := json.Unmarshal(r.Address, &address); err != nil {
		return ""
	}
	return address
}

// DecodeCartItem decodes one raw cart entry.
func DecodeCartItem(raw json.RawMessage) (CartItem, error) {
	var item CartItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return CartItem{}, err
	}
	return item, nil
}

// Order is an OrderRequest that passed validation, priced in minor units.
type Order struct {
	LineItems []LineItem
	Address   string
}

// LineItem is a cart item priced in minor currency units.
type LineItem struct {
	Currency    string
	ProductName string
	UnitAmount  int64
	Quantity    int64
}

// CheckoutSessionRequest is the provider-neutral description of a hosted
// checkout session.
type CheckoutSessionRequest struct {
	PaymentMethodTypes []string
	LineItems          []LineItem
	Mode               string
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string
}

// AmountTotal is the sum of unit amount times quantity over all line items.
func (r CheckoutSessionRequest) AmountTotal() (int64, error) {
	return SumLineItems(r.LineItems)
}

// SumLineItems totals unit amount times quantity, failing with
// ErrAmountOverflow instead of wrapping.
func SumLineItems(items []LineItem) (int64, error) {
	var total int64
	for _, li := range items {
		if li.UnitAmount < 0 || li.Quantity < 0 {
			return 0, fmt.Errorf("negative line item: unit_amount=%d quantity=%d", li.UnitAmount, li.Quantity)
		}
		if li.Quantity != 0 && li.UnitAmount > math.MaxInt64/li.Quantity {
			return 0, ErrAmountOverflow
		}
		sub := li.UnitAmount * li.Quantity
		if total > math.MaxInt64-sub {
			return 0, ErrAmountOverflow
		}
		total += sub
	}
	return total, nil
}

// CheckoutEvent is published after a session has been created.
type CheckoutEvent struct {
	Type        string    `json:"type"`
	SessionID   string    `json:"session_id"`
	ItemCount   int       `json:"item_count"`
	AmountTotal int64     `json:"amount_total"` // minor units
	Currency    string    `json:"currency"`
	RequestID   string    `json:"request_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
