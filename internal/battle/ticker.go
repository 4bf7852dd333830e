package battle

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Ticker drives Round.Tick once per second on a clock. It exits when the
// round leaves the timed phases or when stopped, so no tick outlives the
// round.
type Ticker struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartTicker begins ticking r. onTick runs on the ticker goroutine after
// every tick and may be nil.
func StartTicker(clock clockwork.Clock, r *Round, onTick func(TickResult)) *Ticker {
	t := &Ticker{stop: make(chan struct{}), done: make(chan struct{})}
	tk := clock.NewTicker(time.Second)
	go func() {
		defer close(t.done)
		defer tk.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-r.Closed():
				return
			case <-tk.Chan():
				res := r.Tick()
				if onTick != nil {
					onTick(res)
				}
				if res.Phase != PhaseScenario && res.Phase != PhaseCrafting {
					return
				}
			}
		}
	}()
	return t
}

// Stop halts the ticker and waits for its goroutine to exit.
func (t *Ticker) Stop() {
	t.once.Do(func() { close(t.stop) })
	<-t.done
}

// Done is closed once the ticker goroutine has exited.
func (t *Ticker) Done() <-chan struct{} { return t.done }
