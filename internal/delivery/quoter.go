package delivery

import (
	"context"

	"github.com/aims/storefront/domain"
	"github.com/shopspring/decimal"
)

// Quoter is the external delivery fee calculator.
type Quoter interface {
	CalculateDeliveryFee(ctx context.Context, weight float64, province string, orderValue decimal.Decimal) (decimal.Decimal, error)
}

var (
	MajorCityBaseFee    = decimal.NewFromInt(22000)
	MajorCityBaseWeight = decimal.NewFromInt(3)
	ProvinceBaseFee     = decimal.NewFromInt(30000)
	ProvinceBaseWeight  = decimal.NewFromFloat(0.5)
	StepFee             = decimal.NewFromInt(2500)
	StepWeight          = decimal.NewFromFloat(0.5)

	FreeShippingThreshold = decimal.NewFromInt(100000)
	FreeShippingDiscount  = decimal.NewFromInt(25000)
)

// ReferenceQuoter computes the fallback fee locally.
// It is only used when no backend quote service is wired.
type ReferenceQuoter struct{}

func (ReferenceQuoter) CalculateDeliveryFee(_ context.Context, weight float64, province string, orderValue decimal.Decimal) (decimal.Decimal, error) {
	return ReferenceFee(weight, province, orderValue), nil
}

// ReferenceFee charges a base fee up to a base weight, then StepFee per started StepWeight.
// Orders above FreeShippingThreshold get up to FreeShippingDiscount off, floored at zero.
func ReferenceFee(weight float64, province string, orderValue decimal.Decimal) decimal.Decimal {
	fee, base := ProvinceBaseFee, ProvinceBaseWeight
	if domain.IsMajorCity(province) {
		fee, base = MajorCityBaseFee, MajorCityBaseWeight
	}

	w := decimal.NewFromFloat(weight)
	if w.GreaterThan(base) {
		steps := w.Sub(base).Div(StepWeight).Ceil()
		fee = fee.Add(steps.Mul(StepFee))
	}

	if orderValue.GreaterThan(FreeShippingThreshold) {
		fee = decimal.Max(decimal.Zero, fee.Sub(FreeShippingDiscount))
	}
	return fee
}
