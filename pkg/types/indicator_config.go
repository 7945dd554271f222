package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// PriceSource is the series an oscillator is computed on.
type PriceSource string

const (
	PriceSourceClose  = PriceSource("close")
	PriceSourceOpen   = PriceSource("open")
	PriceSourceHigh   = PriceSource("high")
	PriceSourceLow    = PriceSource("low")
	PriceSourceHL2    = PriceSource("hl2")
	PriceSourceHLC3   = PriceSource("hlc3")
	PriceSourceOHLC4  = PriceSource("ohlc4")
	PriceSourceVolume = PriceSource("volume")
)

var ErrInvalidIndicatorConfig = errors.New("invalid indicator config")

func (s PriceSource) Valid() bool {
	switch s {
	case "", PriceSourceClose, PriceSourceOpen, PriceSourceHigh, PriceSourceLow,
		PriceSourceHL2, PriceSourceHLC3, PriceSourceOHLC4, PriceSourceVolume:
		return true
	}
	return false
}

// IndicatorConfig configures one MACD-style oscillator instance.
type IndicatorConfig struct {
	Fast   int         `json:"fast" yaml:"fast"`
	Slow   int         `json:"slow" yaml:"slow"`
	Signal int         `json:"signal" yaml:"signal"`
	Source PriceSource `json:"source,omitempty" yaml:"source,omitempty"`
}

// SourceOrDefault returns the configured source, close when unset.
func (c IndicatorConfig) SourceOrDefault() PriceSource {
	if c.Source == "" {
		return PriceSourceClose
	}
	return c.Source
}

func (c IndicatorConfig) Validate() error {
	if c.Fast <= 0 || c.Slow <= 0 || c.Signal <= 0 {
		return errors.Wrapf(ErrInvalidIndicatorConfig, "periods must be positive: %s", c)
	}

	if c.Fast >= c.Slow {
		return errors.Wrapf(ErrInvalidIndicatorConfig, "fast period must be shorter than slow period: %s", c)
	}

	if !c.Source.Valid() {
		return errors.Wrapf(ErrInvalidIndicatorConfig, "unknown source %q", c.Source)
	}

	return nil
}

func (c IndicatorConfig) String() string {
	return fmt.Sprintf("MACD(%d,%d,%d,%s)", c.Fast, c.Slow, c.Signal, c.SourceOrDefault())
}
