package valueobject

import (
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/freelance-escrow/internal/pkg/apperror"
)

// MoneyScale: все суммы хранятся с точностью до центов.
const MoneyScale = 2

// DefaultCommissionRate - доля платформы с бюджета завершённого заказа.
var DefaultCommissionRate = decimal.NewFromFloat(0.10)

// MaxAmount - наибольшая сумма, которую вмещает NUMERIC(14, 2).
var MaxAmount = decimal.RequireFromString("999999999999.99")

// NewPositiveAmount проверяет, что сумма строго положительна и не больше MaxAmount,
// и округляет до центов.
func NewPositiveAmount(amount decimal.Decimal, field string) (decimal.Decimal, error) {
	rounded := amount.Round(MoneyScale)
	if !rounded.IsPositive() {
		return decimal.Zero, apperror.New(apperror.ErrCodeValidation, field+" должна быть положительной")
	}
	if rounded.GreaterThan(MaxAmount) {
		return decimal.Zero, apperror.New(apperror.ErrCodeValidation, field+" превышает допустимый максимум "+MaxAmount.StringFixed(MoneyScale))
	}
	return rounded, nil
}

// Payout - разделение бюджета на выплату исполнителю и комиссию платформы.
type Payout struct {
	Budget     decimal.Decimal
	Commission decimal.Decimal
	Earning    decimal.Decimal
}

// SplitPayout считает комиссию и выплату. Комиссия округляется до центов,
// выплата - остаток, так что Commission + Earning == Budget.
func SplitPayout(budget, rate decimal.Decimal) Payout {
	commission := budget.Mul(rate).Round(MoneyScale)
	return Payout{
		Budget:     budget,
		Commission: commission,
		Earning:    budget.Sub(commission),
	}
}

// Shortfall возвращает недостающую сумму или ноль.
func Shortfall(balance, required decimal.Decimal) decimal.Decimal {
	if balance.GreaterThanOrEqual(required) {
		return decimal.Zero
	}
	return required.Sub(balance)
}
