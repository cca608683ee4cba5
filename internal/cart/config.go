package cart

import (
	"time"

	"github.com/angelmondragon/charmcart-backend/pkg/config"
	"github.com/shopspring/decimal"
)

const (
	defaultMaxQuantityPerItem = 10
	defaultMaxLineItems       = 50
	defaultUndoDepth          = 20
	defaultSaveTimeout        = 5 * time.Second
	maxMergeKeys              = 20
)

// Config carries the engine limits and pricing policy.
type Config struct {
	MaxItemPrice       decimal.Decimal
	MaxQuantityPerItem int
	MaxLineItems       int
	UndoDepth          int
	DesignBaseFee      decimal.Decimal
	SaveTimeout        time.Duration
	Pricing            Pricing
}

// ConfigFrom maps the service configuration onto an engine Config.
func ConfigFrom(c config.CartConfig, p config.PersistenceConfig) Config {
	return Config{
		MaxItemPrice:       c.MaxItemPrice,
		MaxQuantityPerItem: c.MaxQuantityPerItem,
		MaxLineItems:       c.MaxLineItems,
		UndoDepth:          c.UndoDepth,
		DesignBaseFee:      c.DesignBaseFee,
		SaveTimeout:        p.SaveTimeout,
		Pricing: Pricing{
			TaxRate:               c.TaxRate,
			FreeShippingThreshold: c.FreeShippingThreshold,
			ShippingFee:           c.ShippingFee,
		},
	}
}

func (c Config) withDefaults() Config {
	if c.MaxItemPrice.IsZero() {
		c.MaxItemPrice = decimal.NewFromInt(10000)
	}
	if c.MaxQuantityPerItem <= 0 {
		c.MaxQuantityPerItem = defaultMaxQuantityPerItem
	}
	if c.MaxLineItems <= 0 {
		c.MaxLineItems = defaultMaxLineItems
	}
	if c.UndoDepth <= 0 {
		c.UndoDepth = defaultUndoDepth
	}
	if c.SaveTimeout <= 0 {
		c.SaveTimeout = defaultSaveTimeout
	}
	return c
}
