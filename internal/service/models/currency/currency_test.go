package currency

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinorToMajor(t *testing.T) {
	cases := []struct {
		amount   int64
		expected string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{99, "0.99"},
		{100, "1.00"},
		{1998, "19.98"},
		{999999, "9999.99"},
		{-1550, "-15.50"},
	}

	for _, tc := range cases {
		t.Run(tc.expected, func(t *testing.T) {
			require.Equal(t, tc.expected, MinorToMajor(tc.amount))
		})
	}
}

func TestMajorToMinor(t *testing.T) {
	cases := []struct {
		amount   string
		expected int64
	}{
		{"0", 0},
		{"0.01", 1},
		{"19.98", 1998},
		{"9.9", 990},
		{"10", 1000},
		{"0.005", 1},
		{"0.015", 2},
		{"-0.005", -1},
		{"1234.567", 123457},
	}

	for _, tc := range cases {
		t.Run(tc.amount, func(t *testing.T) {
			got, err := MajorToMinor(tc.amount)
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestMajorToMinorRejectsGarbage(t *testing.T) {
	for _, amount := range []string{"", "abc", "12.3.4", "$5"} {
		_, err := MajorToMinor(amount)
		require.Error(t, err, "amount %q", amount)
	}
}

func TestMinorMajorRoundTrip(t *testing.T) {
	for cents := int64(0); cents <= 10000; cents++ {
		got, err := MajorToMinor(MinorToMajor(cents))
		require.NoError(t, err)
		require.Equal(t, cents, got, "cents %d", cents)
	}

	for cents := int64(10000); cents <= 10_000_000; cents += 997 {
		got, err := MajorToMinor(MinorToMajor(cents))
		require.NoError(t, err)
		require.Equal(t, cents, got, "cents %d", cents)
	}
}

func TestParseCurrency(t *testing.T) {
	for _, c := range []Currency{CurrencyCAD, CurrencyUSD} {
		got, err := ParseCurrency(c.String())
		require.NoError(t, err)
		require.Equal(t, c, got)
	}

	_, err := ParseCurrency("EUR")
	require.ErrorIs(t, err, ErrInvalidCurrency)

	_, err = ParseCurrency(fmt.Sprintf("%s ", CurrencyCAD))
	require.ErrorIs(t, err, ErrInvalidCurrency)
}
