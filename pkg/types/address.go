package types

// Address is the structured shipping address stored on a user. It persists as
// jsonb through gorm's json serializer, so fields map one-to-one with the API
// payload.
type Address struct {
	AddressLine1 string `json:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	ZipCode      string `json:"zipCode,omitempty"`
	Colony       string `json:"colony,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
}
