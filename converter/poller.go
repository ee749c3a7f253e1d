package converter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mmdatafocus/picklist_bridge/config"
	"github.com/mmdatafocus/picklist_bridge/models"
	"github.com/mmdatafocus/picklist_bridge/utils"
	"github.com/sirupsen/logrus"
)

const (
	// pollerJoinTimeout bounds how long Stop waits for the in-flight cycle to
	// observe cancellation. An in-flight picklist conversion runs to
	// completion; only cycle and sleep boundaries are cancellation points.
	pollerJoinTimeout = 10 * time.Second

	// cycleFailureBackoff is the fixed pause after a cycle-level failure
	// (backend unreachable, pending set unlistable). The loop never exits on
	// failure.
	cycleFailureBackoff = 5 * time.Second

	// sleepIncrement keeps Stop responsive: the inter-cycle sleep checks for
	// cancellation this often instead of blocking for the whole interval.
	sleepIncrement = time.Second
)

// Poller drives ConvertAllPending on a repeating interval in a cancellable
// background goroutine. Start/stop are mutually exclusive; the interval is
// re-read from the ledger at the top of every cycle so changes apply without
// a restart.
type Poller struct {
	converter *Converter
	store     *models.Store
	logger    *logrus.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewPoller(converter *Converter, store *models.Store, logger *logrus.Logger) *Poller {
	return &Poller{
		converter: converter,
		store:     store,
		logger:    logger,
	}
}

// Start launches the polling loop. Non-blocking; fails if already running.
func (p *Poller) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errors.New("polling service is already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	ctx = utils.SetTriggeredByInContext(ctx, "poller")
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	go p.loop(ctx)
	return nil
}

// Stop signals cancellation and waits, bounded, for the loop to exit. Fails
// if the loop is not running.
func (p *Poller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return errors.New("polling service is not running")
	}

	p.cancel()
	select {
	case <-p.done:
	case <-time.After(pollerJoinTimeout):
		config.LogWarn(p.logger, "poller", "Stop", "loop did not exit within join timeout", errors.New("join timeout"))
	}
	p.running = false
	p.cancel = nil
	return nil
}

func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) Status(ctx context.Context) PollerStatus {
	interval := models.DefaultPollingIntervalSeconds
	if defaults, err := p.store.GetQuotationDefaults(ctx); err == nil && defaults != nil && defaults.PollingIntervalSeconds > 0 {
		interval = defaults.PollingIntervalSeconds
	}
	return PollerStatus{
		Running:         p.IsRunning(),
		IntervalSeconds: interval,
	}
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Interval is read fresh each cycle; a settings change applies on the
		// next cycle, not retroactively.
		interval := time.Duration(models.DefaultPollingIntervalSeconds) * time.Second
		defaults, err := p.store.GetQuotationDefaults(ctx)
		if err != nil {
			config.LogError(p.logger, "poller", "loop", "read quotation defaults", nil, err)
		} else if defaults != nil {
			interval = defaults.Interval()
		}

		result, err := p.runCycle(ctx)
		switch {
		case err == nil:
			if result.TotalPending > 0 {
				p.logger.WithFields(logrus.Fields{
					"module":    "poller",
					"pending":   result.TotalPending,
					"converted": result.Converted,
					"failed":    result.Failed,
				}).Info("polling cycle finished")
			}
		case errors.Is(err, context.Canceled):
			return
		case errors.Is(err, ErrRunInProgress):
			// An on-demand conversion holds the run lock; try again next cycle.
		default:
			config.LogError(p.logger, "poller", "loop", "conversion cycle failed", nil, err)
			if !p.sleep(ctx, cycleFailureBackoff) {
				return
			}
			continue
		}

		if !p.sleep(ctx, interval) {
			return
		}
	}
}

// runCycle contains a panicking cycle so the loop survives it.
func (p *Poller) runCycle(ctx context.Context) (result *BatchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("conversion cycle panicked: %v", r)
		}
	}()
	return p.converter.ConvertAllPending(ctx)
}

// sleep waits for d in short increments, returning false once ctx is
// cancelled.
func (p *Poller) sleep(ctx context.Context, d time.Duration) bool {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		increment := sleepIncrement
		if remaining := time.Until(deadline); remaining < increment {
			increment = remaining
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(increment):
		}
	}
	return true
}
