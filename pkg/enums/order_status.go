package enums

import "fmt"

// OrderStatus follows the order lifecycle: pending after reconciliation, then
// send/delivered/cancel via administrative updates.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusSend      OrderStatus = "send"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancel    OrderStatus = "cancel"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusSend,
	OrderStatusDelivered,
	OrderStatusCancel,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
