package positioning

import "math"

// Black-Scholes approximations with a flat assumed volatility and a
// coarse time-to-expiry. Deliberately not a pricing library: the
// analyzer only needs the shape of dealer gamma/delta around spot, so
// per-contract implied volatility is not used.

func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func d1(spot, strike, vol, t, rate float64) float64 {
	return (math.Log(spot/strike) + (rate+vol*vol/2)*t) / (vol * math.Sqrt(t))
}

// bsGamma returns per-unit gamma for one option
func bsGamma(spot, strike, vol, t, rate float64) float64 {
	if spot <= 0 || strike <= 0 || vol <= 0 || t <= 0 {
		return 0
	}
	return normPDF(d1(spot, strike, vol, t, rate)) / (spot * vol * math.Sqrt(t))
}

// bsCallDelta returns the call delta; put delta is callDelta - 1
func bsCallDelta(spot, strike, vol, t, rate float64) float64 {
	if spot <= 0 || strike <= 0 || vol <= 0 || t <= 0 {
		return 0
	}
	return normCDF(d1(spot, strike, vol, t, rate))
}

// yearsToNextWeeklyExpiry approximates time-to-expiry as whole days to
// the next Friday divided by 365, floored at one day so greeks never
// divide by zero on expiry day
func yearsToNextWeeklyExpiry(weekday int) float64 {
	days := (5 - weekday + 7) % 7 // 5 = Friday
	if days == 0 {
		days = 1
	}
	return float64(days) / 365.0
}
