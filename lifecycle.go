package popdex

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/popdex/popdex/pkg/logging"
)

// lifecycle owns the background auto-update loop. Each AutoUpdatesOn
// starts a fresh ticker and stop channel so the loop can be restarted
// after AutoUpdatesOff.
type lifecycle struct {
	mu     sync.Mutex
	ticker *time.Ticker
	stopCh chan struct{}
}

// AutoUpdatesOn begins periodic background reloads. Each tick checks the
// remote freshness first and skips the reload when nothing changed.
// Calling it while a loop is already running replaces that loop.
func (p *popdex) AutoUpdatesOn() error {
	if p.config.autoUpdateInterval <= 0 {
		return fmt.Errorf("update interval must be positive")
	}

	p.lifecycle.mu.Lock()
	defer p.lifecycle.mu.Unlock()

	p.stopLocked()

	p.lifecycle.stopCh = make(chan struct{})
	p.lifecycle.ticker = time.NewTicker(p.config.autoUpdateInterval)

	go p.autoUpdateLoop(p.lifecycle.ticker, p.lifecycle.stopCh)
	return nil
}

// AutoUpdatesOff stops periodic background reloads. Safe to call more
// than once, and before the first AutoUpdatesOn.
func (p *popdex) AutoUpdatesOff() error {
	p.lifecycle.mu.Lock()
	defer p.lifecycle.mu.Unlock()
	p.stopLocked()
	return nil
}

// stopLocked tears down the running loop. Caller holds lifecycle.mu.
func (p *popdex) stopLocked() {
	if p.lifecycle.ticker != nil {
		p.lifecycle.ticker.Stop()
		p.lifecycle.ticker = nil
	}
	if p.lifecycle.stopCh != nil {
		close(p.lifecycle.stopCh)
		p.lifecycle.stopCh = nil
	}
}

func (p *popdex) autoUpdateLoop(ticker *time.Ticker, stopCh chan struct{}) {
	for {
		select {
		case <-ticker.C:
			p.autoUpdateTick()
		case <-stopCh:
			return
		}
	}
}

func (p *popdex) autoUpdateTick() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	updated, err := p.CheckForUpdate(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Auto-update freshness check failed")
		return
	}
	if !updated {
		return
	}
	if err := p.ForceReload(ctx); err != nil {
		logging.Warn().Err(err).Msg("Auto-update reload failed")
	}
}
