//-------------------------------------------------------------------------
//
// pgEdge POS Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen generates realistic point-of-sale export files for
// demos and tests.
package datagen

import (
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

// Faker provides fake data generation using gofakeit.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a new Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a new Faker with a specific seed for reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// Name generates a random full name.
func (f *Faker) Name() string {
	return f.faker.Name()
}

// FirstName generates a random first name.
func (f *Faker) FirstName() string {
	return f.faker.FirstName()
}

// CardBrand generates a random credit card brand such as "Visa".
func (f *Faker) CardBrand() string {
	return f.faker.CreditCardType()
}

// Int generates a random integer between min and max (inclusive).
func (f *Faker) Int(min, max int) int {
	return f.faker.IntRange(min, max)
}

// Float64 generates a random float64 between min and max.
func (f *Faker) Float64(min, max float64) float64 {
	return f.faker.Float64Range(min, max)
}

// Chance reports true with probability p.
func (f *Faker) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	return f.Float64(0, 1) < p
}

// Cents generates a random amount between min and max, rounded to cents.
func (f *Faker) Cents(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(f.Float64(min, max)).Round(2)
}

// Choose returns a random element from the given slice.
func Choose[T any](f *Faker, items []T) T {
	if len(items) == 0 {
		var zero T
		return zero
	}
	return items[f.Int(0, len(items)-1)]
}

// ChooseWeighted returns a random element based on weights.
func ChooseWeighted[T any](f *Faker, items []T, weights []int) T {
	if len(items) == 0 || len(weights) == 0 {
		var zero T
		return zero
	}

	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}

	r := f.Int(1, totalWeight)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return items[i]
		}
	}

	return items[len(items)-1]
}

// NullableString returns the string or empty with given probability.
func (f *Faker) NullableString(s string, nullProbability float64) string {
	if f.Chance(nullProbability) {
		return ""
	}
	return s
}

// FormatMoney renders an amount the way POS exports do: "$1,234.56",
// negative amounts as "-$5.00".
func FormatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + frac
}
