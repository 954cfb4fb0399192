package templates

import (
	"testing"
	"time"
)

func TestFormatLargeMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2.95e12, "$2.95T"},
		{410.123e9, "$410.12B"},
		{12.5e6, "$12.50M"},
		{950000, "$950,000"},
		{0, "N/A"},
	}
	for _, tt := range tests {
		if got := FormatLargeMoney(tt.in); got != tt.want {
			t.Errorf("FormatLargeMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.5e9, "1.50B"},
		{51234567, "51.23M"},
		{820000, "820.00K"},
		{950, "950"},
		{0, "N/A"},
	}
	for _, tt := range tests {
		if got := FormatCompact(tt.in); got != tt.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoneyAndPercent(t *testing.T) {
	if got := FormatMoney(1234.5); got != "$1,234.5" {
		t.Errorf("FormatMoney = %q", got)
	}
	if got := FormatMoney(0); got != "N/A" {
		t.Errorf("FormatMoney(0) = %q", got)
	}
	if got := FormatPercent(0.0003); got != "0.03%" {
		t.Errorf("FormatPercent = %q", got)
	}
}

func TestOrNA(t *testing.T) {
	if got := OrNA(""); got != "N/A" {
		t.Errorf("OrNA(\"\") = %v", got)
	}
	if got := OrNA(29.4); got != "29.40" {
		t.Errorf("OrNA(29.4) = %v", got)
	}
	if got := OrNA(int64(161000)); got != "161,000" {
		t.Errorf("OrNA(161000) = %v", got)
	}
	if got := OrNA("Technology"); got != "Technology" {
		t.Errorf("OrNA(Technology) = %v", got)
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)); got != "2024-01-02" {
		t.Errorf("FormatDate = %q", got)
	}
}
