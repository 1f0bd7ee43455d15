package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 3, hour, minute, 0, 0, time.UTC)
}

func TestCurrent_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want Window
	}{
		{"midnight", at(0, 0), AfterHours},
		{"just before pre-market", at(3, 59), AfterHours},
		{"pre-market opens", at(4, 0), PreMarket},
		{"late pre-market", at(8, 59), PreMarket},
		{"market opens", at(9, 0), MarketOpen},
		{"midday", at(13, 59), MarketOpen},
		{"afternoon starts", at(14, 0), Afternoon},
		{"last afternoon minute", at(15, 59), Afternoon},
		{"close", at(16, 0), AfterHours},
		{"evening", at(20, 30), AfterHours},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Current(tt.at))
		})
	}
}

func TestWindow_Valid(t *testing.T) {
	assert.True(t, PreMarket.Valid())
	assert.True(t, AfterHours.Valid())
	assert.False(t, Window("lunch").Valid())
}

func TestWindow_TitleAndFocus(t *testing.T) {
	for _, w := range []Window{PreMarket, MarketOpen, Afternoon, AfterHours} {
		assert.NotEmpty(t, w.Title())
		assert.NotEmpty(t, w.Focus())
	}
	assert.Equal(t, "Pre-Market Analysis", PreMarket.Title())
}
