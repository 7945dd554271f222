package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundary_Key(t *testing.T) {
	b := Boundary{
		Start: BoundaryWindow{LeftTime: 100, RightTime: 200},
		End:   BoundaryWindow{LeftTime: 300, RightTime: 400},
	}

	assert.Equal(t, `[{"left_time":100,"right_time":200},{"left_time":300,"right_time":400}]`, b.Key())
	assert.Equal(t, [4]Timestamp{100, 200, 300, 400}, b.Times())

	a := Divergence{Boundary: b, Kind: SignalKindFirstBuy, Low: 1}
	c := Divergence{Boundary: b, Kind: SignalKindSecondSell, Low: 2}
	assert.Equal(t, a.Key(), c.Key())

	c.Boundary.End.RightTime = 401
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestZoneInfo_Drawable(t *testing.T) {
	var zone *ZoneInfo
	assert.False(t, zone.Drawable())

	assert.False(t, (&ZoneInfo{Left: 1, Right: 2, SegmentCount: 1}).Drawable())
	assert.False(t, (&ZoneInfo{Left: 2, Right: 2, SegmentCount: 3}).Drawable())
	assert.True(t, (&ZoneInfo{Left: 1, Right: 2, SegmentCount: 2}).Drawable())
}

func TestSignalKind(t *testing.T) {
	assert.True(t, SignalKindFirstBuy.IsBuy())
	assert.True(t, SignalKindThirdSell.IsSell())
	assert.False(t, SignalKindNone.IsSignal())
	assert.False(t, SignalKind("").IsSignal())
	assert.True(t, SignalKindSecondBuy.IsSignal())
}

func TestDirection_Color(t *testing.T) {
	assert.Equal(t, "#00ce09", DirectionUp.Color())
	assert.Equal(t, "#ff1493", DirectionDown.Color())
}

func TestAnnotationPayload_Decode(t *testing.T) {
	var p AnnotationPayload
	err := json.Unmarshal([]byte(`{
		"segments": {"finished": [], "unfinished": null},
		"divergences": [[{"direction": "up", "kind": "ThirdBuy", "boundary": {"start": {"left_time": 1, "right_time": 2}, "end": {"left_time": 3, "right_time": 4}}}], []],
		"bar_markers": [[], [5, 6]]
	}`), &p)
	require.NoError(t, err)

	assert.Equal(t, 1, p.NumDivergences())
	assert.Equal(t, 2, p.NumBarMarkers())
	assert.False(t, p.IsEmpty())
	assert.Nil(t, p.Divergences[0][0].Zone)

	assert.True(t, (&AnnotationPayload{}).IsEmpty())
}

func TestIndicatorConfig_Validate(t *testing.T) {
	assert.NoError(t, IndicatorConfig{Fast: 12, Slow: 26, Signal: 9}.Validate())
	assert.NoError(t, IndicatorConfig{Fast: 4, Slow: 9, Signal: 9, Source: PriceSourceVolume}.Validate())

	assert.ErrorIs(t, IndicatorConfig{Fast: 0, Slow: 26, Signal: 9}.Validate(), ErrInvalidIndicatorConfig)
	assert.ErrorIs(t, IndicatorConfig{Fast: 26, Slow: 12, Signal: 9}.Validate(), ErrInvalidIndicatorConfig)
	assert.ErrorIs(t, IndicatorConfig{Fast: 12, Slow: 26, Signal: 9, Source: "vwap"}.Validate(), ErrInvalidIndicatorConfig)

	assert.Equal(t, "MACD(12,26,9,close)", IndicatorConfig{Fast: 12, Slow: 26, Signal: 9}.String())
}

func TestVisibleRange(t *testing.T) {
	r := VisibleRange{From: 100, To: 200}
	assert.False(t, r.IsEmpty())
	assert.True(t, VisibleRange{From: 100, To: 100}.IsEmpty())
	assert.Equal(t, VisibleRange{From: 100, To: 150}, r.ClampTo(150))
	assert.Equal(t, r, r.ClampTo(300))
	assert.True(t, r.ClampTo(50).IsEmpty())

	assert.Equal(t, Timestamp(150), Timestamp(100).Mid(200))
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("1700000000")
	assert.NoError(t, err)
	assert.Equal(t, Timestamp(1700000000), ts)

	ts, err = ParseTimestamp("2024-01-02")
	assert.NoError(t, err)
	assert.Equal(t, "2024-01-02T00:00:00Z", ts.String())

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}
