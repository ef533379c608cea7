package popdex

import (
	"sync"
	"time"
)

// SwapEvent describes one successful snapshot swap.
type SwapEvent struct {
	// PreviousRows is the row count before the swap.
	PreviousRows int

	// Rows is the row count after the swap.
	Rows int

	// LoadedAt is when the new snapshot was built.
	LoadedAt time.Time
}

// CatalogSwapHook is called after each successful snapshot swap.
type CatalogSwapHook func(SwapEvent)

// hooks manages event callbacks for catalog changes.
type hooks struct {
	mu            sync.RWMutex
	onCatalogSwap []CatalogSwapHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnCatalogSwap registers a swap callback.
func (h *hooks) OnCatalogSwap(fn CatalogSwapHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onCatalogSwap = append(h.onCatalogSwap, fn)
}

// triggerCatalogSwap fires all registered swap callbacks in order.
func (h *hooks) triggerCatalogSwap(event SwapEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onCatalogSwap {
		fn(event)
	}
}
