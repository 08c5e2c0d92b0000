package notify

import "github.com/mesh-intelligence/provider/pkg/types"

// Fanout sends each notification to every notifier in order. Watches are
// served by the first notifier that is a types.Watcher.
type Fanout []types.Notifier

var (
	_ types.Notifier = Fanout(nil)
	_ types.Watcher  = Fanout(nil)
)

// Notify forwards l to each notifier.
func (f Fanout) Notify(l types.Locator) {
	for _, n := range f {
		n.Notify(l)
	}
}

// Watch delegates to the first watcher. With none it returns a nil channel
// and a no-op stop function.
func (f Fanout) Watch(l types.Locator) (<-chan types.Locator, func()) {
	for _, n := range f {
		if w, ok := n.(types.Watcher); ok {
			return w.Watch(l)
		}
	}
	return nil, func() {}
}
