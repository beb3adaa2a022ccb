package view

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	type testCase struct {
		in   string
		want string
	}

	tests := []testCase{
		{in: "0", want: "R$ 0,00"},
		{in: "34.5", want: "R$ 34,50"},
		{in: "999.99", want: "R$ 999,99"},
		{in: "1234.56", want: "R$ 1.234,56"},
		{in: "1234567.8", want: "R$ 1.234.567,80"},
		{in: "-1500", want: "-R$ 1.500,00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "9min", formatDuration(9*time.Minute+10*time.Second))
	assert.Equal(t, "1h05", formatDuration(65*time.Minute))
	assert.Equal(t, "26h00", formatDuration(26*time.Hour))
}
