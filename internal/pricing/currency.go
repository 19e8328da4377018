package pricing

// Currency is a display currency for catalog prices. RUB is the base
// currency prices are stored in; UNDEFINED stands in for any code the
// service does not recognize.
type Currency int

const (
	RUB Currency = iota
	USD
	EURO
	UNDEFINED
)

// toRub holds each concrete currency's conversion ratio versus the base.
// UNDEFINED is deliberately absent; RatioFor special-cases it. The map is
// never mutated after init, so concurrent reads need no locking.
var toRub = map[Currency]float64{
	RUB:  1.0,
	USD:  30.0,
	EURO: 40.0,
}

// ParseCurrency is total: any unrecognized code maps to UNDEFINED instead
// of failing. Stored currency strings go through this on every read.
func ParseCurrency(s string) Currency {
	switch s {
	case "RUB":
		return RUB
	case "USD":
		return USD
	case "EURO":
		return EURO
	default:
		return UNDEFINED
	}
}

func (c Currency) String() string {
	switch c {
	case RUB:
		return "RUB"
	case USD:
		return "USD"
	case EURO:
		return "EURO"
	default:
		return "UNDEFINED"
	}
}

// RatioFor returns the conversion ratio to the base currency. UNDEFINED
// converts 1:1, so prices for unknown currencies pass through unchanged.
func RatioFor(c Currency) float64 {
	if c == UNDEFINED {
		return 1.0
	}
	return toRub[c]
}
