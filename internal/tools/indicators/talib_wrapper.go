package indicators

import (
	"stockadvisor/internal/adapters/marketdata"
	"stockadvisor/pkg/errors"
)

// PrepareCloses extracts close prices in chronological order (oldest first),
// which is what ta-lib expects.
func PrepareCloses(h *marketdata.History) ([]float64, error) {
	if h == nil || len(h.Bars) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "no bars provided")
	}
	return h.Closes(), nil
}

// GetLastValue returns the most recent value from ta-lib output
func GetLastValue(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.Wrapf(errors.ErrInternal, "no values returned from indicator")
	}
	return values[len(values)-1], nil
}

// GetLastNValues returns last N values from ta-lib output
func GetLastNValues(values []float64, n int) ([]float64, error) {
	if len(values) == 0 {
		return nil, errors.Wrapf(errors.ErrInternal, "no values returned from indicator")
	}
	if n <= 0 || n > len(values) {
		n = len(values)
	}
	return values[len(values)-n:], nil
}

// ValidateMinLength checks if we have enough data for indicator calculation
func ValidateMinLength(closes []float64, minLength int, indicatorName string) error {
	if len(closes) < minLength {
		return errors.Wrapf(errors.ErrInvalidInput,
			"%s requires at least %d bars, got %d",
			indicatorName, minLength, len(closes))
	}
	return nil
}
