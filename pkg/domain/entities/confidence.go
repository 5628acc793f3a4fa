package entities

// ConfidenceLevel grades how reliable a promise date is
type ConfidenceLevel int

const (
	ConfidenceLow ConfidenceLevel = iota
	ConfidenceMedium
	ConfidenceHigh
)

// String method for ConfidenceLevel enum
func (c ConfidenceLevel) String() string {
	switch c {
	case ConfidenceHigh:
		return "HIGH"
	case ConfidenceMedium:
		return "MEDIUM"
	case ConfidenceLow:
		return "LOW"
	default:
		return "Unknown"
	}
}

// Min returns the weaker of two confidence levels
func (c ConfidenceLevel) Min(other ConfidenceLevel) ConfidenceLevel {
	if other < c {
		return other
	}
	return c
}
