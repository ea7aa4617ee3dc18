package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProduct_ChargePrice_Sale(t *testing.T) {
	sale := int64(2800)
	p := Product{Price: 4000, SalePrice: &sale, IsSale: true}

	assert.Equal(t, int64(2800), p.ChargePrice())
}

func TestProduct_ChargePrice_SaleFlagOff(t *testing.T) {
	sale := int64(2800)
	p := Product{Price: 4000, SalePrice: &sale, IsSale: false}

	assert.Equal(t, int64(4000), p.ChargePrice())
}

func TestProduct_ChargePrice_SalePriceMissing(t *testing.T) {
	p := Product{Price: 4000, IsSale: true}

	assert.Equal(t, int64(4000), p.ChargePrice())
}

func TestProduct_ChargePrice_Regular(t *testing.T) {
	p := Product{Price: 2500}

	assert.Equal(t, int64(2500), p.ChargePrice())
}
