package entity

import "fmt"

// Status is the order lifecycle state.
type Status string

// The full status vocabulary. Orders start in StatusOnProcess; the status
// endpoint overwrites unconditionally, so transitions are not forced to
// follow the listed progression.
const (
	StatusOnProcess  Status = "on_process"
	StatusOnDelivery Status = "on_delivery"
	StatusDelivered  Status = "delivered"
)

// Statuses lists every accepted status value.
func Statuses() []Status {
	return []Status{StatusOnProcess, StatusOnDelivery, StatusDelivered}
}

// ParseStatus validates a raw string against the status vocabulary.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusOnProcess, StatusOnDelivery, StatusDelivered:
		return Status(raw), nil
	}
	return "", fmt.Errorf("invalid status %q, must be one of %v", raw, Statuses())
}

func (s Status) String() string {
	return string(s)
}
