package enums

import "fmt"

// PaymentPreference is the user's preferred settlement method.
type PaymentPreference string

const (
	PaymentPreferenceCash PaymentPreference = "cash"
	PaymentPreferenceCard PaymentPreference = "card"
)

var validPaymentPreferences = []PaymentPreference{
	PaymentPreferenceCash,
	PaymentPreferenceCard,
}

// String implements fmt.Stringer.
func (p PaymentPreference) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentPreference.
func (p PaymentPreference) IsValid() bool {
	for _, candidate := range validPaymentPreferences {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentPreference converts raw input into a PaymentPreference.
func ParsePaymentPreference(value string) (PaymentPreference, error) {
	for _, candidate := range validPaymentPreferences {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment preference %q", value)
}
