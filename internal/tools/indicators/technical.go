package indicators

import (
	"math"
	"time"

	"github.com/markcheno/go-talib"

	"stockadvisor/internal/adapters/marketdata"
	"stockadvisor/pkg/errors"
)

// MinBars is the shortest series Compute accepts; SMA50 needs 50 closes.
const MinBars = 50

const (
	rsiPeriod     = 14
	macdFast      = 12
	macdSlow      = 26
	macdSignal    = 9
	bbPeriod      = 20
	bbDeviation   = 2.0
	srWindow      = 20
	tradingMonth  = 20
	tradingYear   = 252
	overboughtRSI = 70
	oversoldRSI   = 30
)

// Range is a projected low/high price band.
type Range struct {
	Low  float64
	High float64
}

// Summary is the technical snapshot rendered by the technical summary tool.
type Summary struct {
	Symbol string
	AsOf   time.Time
	Price  float64

	RSI       float64
	RSIStatus string

	MACD        float64
	MACDSignal  float64
	MACDDiff    float64
	MACDStatus  string
	SMA20       float64
	SMA50       float64
	SMA50Status string

	BollingerHigh float64
	BollingerLow  float64
	BandWidth     float64

	Support    float64
	Resistance float64

	Week  Range
	Month Range
	Year  Range
}

// Compute derives momentum, trend, volatility, support/resistance and
// volatility-scaled price projections from a daily series.
func Compute(h *marketdata.History) (*Summary, error) {
	closes, err := PrepareCloses(h)
	if err != nil {
		return nil, err
	}
	if err := ValidateMinLength(closes, MinBars, "technical summary"); err != nil {
		return nil, err
	}

	last, _ := h.Last()
	price := last.Close

	rsi, err := GetLastValue(talib.Rsi(closes, rsiPeriod))
	if err != nil {
		return nil, errors.Wrap(err, "rsi")
	}

	macdLine, signalLine, hist := talib.Macd(closes, macdFast, macdSlow, macdSignal)
	macd, err := GetLastValue(macdLine)
	if err != nil {
		return nil, errors.Wrap(err, "macd")
	}
	signal, _ := GetLastValue(signalLine)
	diff, _ := GetLastValue(hist)

	upper, _, lower := talib.BBands(closes, bbPeriod, bbDeviation, bbDeviation, talib.SMA)
	bbHigh, err := GetLastValue(upper)
	if err != nil {
		return nil, errors.Wrap(err, "bollinger bands")
	}
	bbLow, _ := GetLastValue(lower)

	sma20, _ := GetLastValue(talib.Sma(closes, 20))
	sma50, err := GetLastValue(talib.Sma(closes, 50))
	if err != nil {
		return nil, errors.Wrap(err, "sma")
	}

	recent, _ := GetLastNValues(closes, srWindow)
	support, resistance := minMax(recent)

	s := &Summary{
		Symbol:        h.Symbol,
		AsOf:          last.Time,
		Price:         price,
		RSI:           rsi,
		RSIStatus:     rsiStatus(rsi),
		MACD:          macd,
		MACDSignal:    signal,
		MACDDiff:      diff,
		MACDStatus:    "Bearish",
		SMA20:         sma20,
		SMA50:         sma50,
		SMA50Status:   "Price below SMA50",
		BollingerHigh: bbHigh,
		BollingerLow:  bbLow,
		BandWidth:     bbHigh - bbLow,
		Support:       support,
		Resistance:    resistance,
	}
	if diff > 0 {
		s.MACDStatus = "Bullish"
	}
	if price > sma50 {
		s.SMA50Status = "Price above SMA50"
	}

	dailyVol := stdDev(pctChange(closes))

	weekVol := (bbHigh - bbLow) / price
	s.Week = band(price, weekVol*0.3, 1+diff/price*0.1)
	s.Month = band(price, dailyVol*math.Sqrt(tradingMonth), 1+diff/price*0.3)
	s.Year = band(price, dailyVol*math.Sqrt(tradingYear)*0.8, 1+(sma20-sma50)/price*0.5)

	return s, nil
}

func rsiStatus(rsi float64) string {
	switch {
	case rsi > overboughtRSI:
		return "Overbought"
	case rsi < oversoldRSI:
		return "Oversold"
	default:
		return "Neutral"
	}
}

func band(price, spread, trend float64) Range {
	return Range{
		Low:  price * (1 - spread) * trend,
		High: price * (1 + spread) * trend,
	}
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func pctChange(closes []float64) []float64 {
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		out = append(out, closes[i]/closes[i-1]-1)
	}
	return out
}

// stdDev is the sample standard deviation (n-1 denominator).
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
