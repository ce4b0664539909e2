package domain

// DeliveryStatus is the outcome of sending one entry to one subscriber
type DeliveryStatus int

// delivery outcomes
const (
	DeliveryFailed      DeliveryStatus = iota // transient or unknown error, counts as failure
	DeliveryOK                                // message accepted by the messaging platform
	DeliveryUnreachable                       // recipient is gone for good, absorbed silently
)

func (s DeliveryStatus) String() string {
	switch s {
	case DeliveryOK:
		return "delivered"
	case DeliveryUnreachable:
		return "unreachable"
	default:
		return "failed"
	}
}
