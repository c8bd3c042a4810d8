package mirakl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCarrierName(t *testing.T) {
	cases := []struct {
		code     string
		expected string
	}{
		{"UPS", "United Parcel Service"},
		{"FEDEX", "FedEx"},
		{"USPS", "United States Postal Service"},
		{"DHL", "DHL Express"},
		{"CPCL", "Canada Post"},
		{"PRLA", "Purolator"},
		{"ACME-EXPRESS", "ACME-EXPRESS"},
		{"", ""},
	}

	for _, tc := range cases {
		require.Equal(t, tc.expected, CarrierName(tc.code), "code %q", tc.code)
	}
}
