package mirakl

// carrierNames maps marketplace carrier codes to the display names carried
// on shipment payloads.
var carrierNames = map[string]string{
	"UPS":   "United Parcel Service",
	"FEDEX": "FedEx",
	"USPS":  "United States Postal Service",
	"DHL":   "DHL Express",
	"CPCL":  "Canada Post",
	"PRLA":  "Purolator",
}

// CarrierName resolves a carrier code to a human-readable carrier name.
// Unknown codes pass through unchanged as their own name.
func CarrierName(code string) string {
	if name, ok := carrierNames[code]; ok {
		return name
	}

	return code
}
