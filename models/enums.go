package models

import (
	"errors"
	"strings"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "CASH"
	// PaymentMethodCard is stored as "CB" (carte bancaire), the value the sales sheet expects.
	PaymentMethodCard PaymentMethod = "CB"
)

var ErrUnknownPaymentMethod = errors.New("unknown payment method")

// ParsePaymentMethod accepts CASH, CARD and CB in any case.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CASH":
		return PaymentMethodCash, nil
	case "CARD", "CB":
		return PaymentMethodCard, nil
	default:
		return "", ErrUnknownPaymentMethod
	}
}

func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCash || m == PaymentMethodCard
}
