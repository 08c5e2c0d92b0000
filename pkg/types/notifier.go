package types

// Notifier receives "resource at locator changed" after every successful
// mutation. Notify is fire-and-forget; it must not block the caller on
// slow listeners.
type Notifier interface {
	Notify(l Locator)
}

// Watcher is implemented by notifiers that can report changes back to
// readers. The channel receives the changed locator for every
// notification at, below or above l. Calling the returned function stops the
// watch and is safe to call more than once.
type Watcher interface {
	Watch(l Locator) (<-chan Locator, func())
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(l Locator)

// Notify calls f(l).
func (f NotifierFunc) Notify(l Locator) {
	f(l)
}
