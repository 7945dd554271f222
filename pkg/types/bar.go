package types

import "fmt"

// Bar is the OHLCV payload of a realtime tick.
type Bar struct {
	Time   Timestamp `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

func (b Bar) String() string {
	return fmt.Sprintf("Bar %s O: %g H: %g L: %g C: %g V: %g", b.Time, b.Open, b.High, b.Low, b.Close, b.Volume)
}
