package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/yashrajoria/checkout-service/models"
)

var (
	minorUnitsPerMajor = decimal.NewFromInt(100)
	maxUnitAmount      = decimal.NewFromInt(models.MaxUnitAmount)

	errBelowMinorUnit = errors.New("below one minor unit")
	errAboveMaxAmount = fmt.Errorf("above %d minor units", models.MaxUnitAmount)
)

// ValidateOrder checks the request in order: cart, address, then each item.
// The first violation wins. On success the items are priced in minor units.
func ValidateOrder(req *models.OrderRequest) (*models.Order, *CheckoutError) {
	if req == nil {
		return nil, newCheckoutError(KindEmptyCart, MsgEmptyCart, nil)
	}
	entries, isArray := req.CartEntries()
	if isArray && len(entries) == 0 {
		return nil, newCheckoutError(KindEmptyCart, MsgEmptyCart, nil)
	}
	address := req.AddressText()
	if strings.TrimSpace(address) == "" {
		return nil, newCheckoutError(KindMissingAddress, MsgMissingAddress, nil)
	}
	if !isArray {
		return nil, newCheckoutError(KindInvalidItem, MsgInvalidItem, errors.New("items is not an array"))
	}

	lineItems := make([]models.LineItem, 0, len(entries))
	for i, raw := range entries {
		item, err := models.DecodeCartItem(raw)
		if err != nil {
			return nil, newCheckoutError(KindInvalidItem, MsgInvalidItem, fmt.Errorf("item %d: %w", i, err))
		}
		if err := item.Validate(); err != nil {
			return nil, newCheckoutError(KindInvalidItem, MsgInvalidItem, fmt.Errorf("item %d: %w", i, err))
		}
		unitAmount, err := ToMinorUnits(*item.Price)
		if err != nil {
			return nil, newCheckoutError(KindInvalidItem, MsgInvalidItem, fmt.Errorf("item %d: %w", i, err))
		}
		lineItems = append(lineItems, models.LineItem{
			Currency:    models.Currency,
			ProductName: item.Name,
			UnitAmount:  unitAmount,
			Quantity:    *item.Quantity,
		})
	}
	if _, err := models.SumLineItems(lineItems); err != nil {
		return nil, newCheckoutError(KindInvalidItem, MsgInvalidItem, err)
	}

	return &models.Order{LineItems: lineItems, Address: address}, nil
}

// ToMinorUnits converts a major-unit price to minor units, rounding half away
// from zero. The result must lie in [1, models.MaxUnitAmount].
func ToMinorUnits(price decimal.Decimal) (int64, error) {
	amount := price.Mul(minorUnitsPerMajor).Round(0)
	if amount.LessThan(decimal.NewFromInt(1)) {
		return 0, fmt.Errorf("price %s: %w", price.String(), errBelowMinorUnit)
	}
	if amount.GreaterThan(maxUnitAmount) {
		return 0, fmt.Errorf("price %s: %w", price.String(), errAboveMaxAmount)
	}
	return amount.IntPart(), nil
}

// TruncateAddress keeps the first MaxAddressLength characters of address.
func TruncateAddress(address string) string {
	if utf8.RuneCountInString(address) <= models.MaxAddressLength {
		return address
	}
	runes := []rune(address)
	return string(runes[:models.MaxAddressLength])
}

// BuildSessionRequest wraps a validated order into a checkout session request.
func BuildSessionRequest(order *models.Order, frontendURL string) models.CheckoutSessionRequest {
	base := strings.TrimSuffix(frontendURL, "/")
	return models.CheckoutSessionRequest{
		PaymentMethodTypes: []string{models.PaymentMethodCard},
		LineItems:          order.LineItems,
		Mode:               models.CheckoutModePayment,
		SuccessURL:         base + "/success",
		CancelURL:          base + "/payment/error",
		Metadata: map[string]string{
			"address": TruncateAddress(order.Address),
		},
	}
}
