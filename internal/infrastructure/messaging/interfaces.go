// Package messaging fans storage events out to a visitor's open pages.
package messaging

// StoragePublisher announces that a visitor's storage area changed.
type StoragePublisher interface {
	Publish(visitorID string, event StorageEvent)
}
