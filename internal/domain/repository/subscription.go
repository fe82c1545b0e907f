package repository

// Subscription is a live listener on the document store. Stop is idempotent.
type Subscription interface {
	Stop()
}

// SubscriptionFunc adapts a plain function to Subscription.
type SubscriptionFunc func()

func (f SubscriptionFunc) Stop() {
	if f != nil {
		f()
	}
}
