package views

import "sync"

// Regions that close when the pointer lands elsewhere.
const (
	RegionNotifications = "notifications"
	RegionUserMenu      = "user-menu"
)

type observer struct {
	region    string
	onOutside func()
}

// PointerBus fans pointer events out to the open overlays of one session.
type PointerBus struct {
	mu        sync.Mutex
	next      int
	observers map[int]observer
}

func NewPointerBus() *PointerBus {
	return &PointerBus{observers: make(map[int]observer)}
}

// Observe calls onOutside for every pointer event whose target is not region.
// The returned func removes the observer.
func (b *PointerBus) Observe(region string, onOutside func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.observers[id] = observer{region: region, onOutside: onOutside}

	var once sync.Once

	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			delete(b.observers, id)
		})
	}
}

func (b *PointerBus) Dispatch(target string) {
	b.mu.Lock()
	hit := make([]func(), 0, len(b.observers))

	for _, o := range b.observers {
		if o.region != target {
			hit = append(hit, o.onOutside)
		}
	}
	b.mu.Unlock()

	for _, fn := range hit {
		fn()
	}
}

func (b *PointerBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.observers)
}
