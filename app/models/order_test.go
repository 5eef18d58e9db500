package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusRankFollowsPipeline(t *testing.T) {
	assert.Equal(t, 1, StatusPending.Rank())
	assert.Equal(t, 5, StatusDelivered.Rank())
	assert.Equal(t, 0, OrderStatus("cancelled").Rank())
	assert.False(t, OrderStatus("").Valid())
}

func TestStatusNext(t *testing.T) {
	assert.Equal(t, StatusAccepted, StatusPending.Next())
	assert.Equal(t, StatusOutForDelivery, StatusPrinting.Next())
	assert.Equal(t, OrderStatus(""), StatusDelivered.Next())
	assert.Equal(t, OrderStatus(""), OrderStatus("bogus").Next())
}

func TestStatusBefore(t *testing.T) {
	assert.Empty(t, StatusPending.Before())
	assert.Equal(t, []OrderStatus{StatusPending, StatusAccepted}, StatusPrinting.Before())
	assert.Equal(t, []OrderStatus{StatusPending, StatusAccepted, StatusPrinting, StatusOutForDelivery}, StatusDelivered.Before())
	assert.Empty(t, OrderStatus("bogus").Before())

	// callers may not corrupt the pipeline through the returned slice
	StatusDelivered.Before()[0] = StatusDelivered
	assert.Equal(t, 1, StatusPending.Rank())
	assert.Len(t, Statuses(), 5)
}

func TestVendorSettable(t *testing.T) {
	assert.False(t, StatusPending.VendorSettable())
	assert.False(t, StatusAccepted.VendorSettable())
	assert.True(t, StatusPrinting.VendorSettable())
	assert.True(t, StatusOutForDelivery.VendorSettable())
	assert.True(t, StatusDelivered.VendorSettable())
}

func TestPricingRate(t *testing.T) {
	p := PricingConfig{BWSinglePage: 1, BWDoublePage: 2, ColorSinglePage: 3, ColorDoublePage: 4}

	assert.Equal(t, 1.0, p.Rate(ColorBW, false))
	assert.Equal(t, 2.0, p.Rate(ColorBW, true))
	assert.Equal(t, 3.0, p.Rate(ColorFull, false))
	assert.Equal(t, 4.0, p.Rate(ColorFull, true))
}
