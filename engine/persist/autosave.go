package persist

import (
	"context"
	"sync"
	"time"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/typecascade/core"
)

// Change is a save-worthy change of the styles. Doc holds the serialized
// state after the change.
type Change struct {
	Reason string
	Doc    []byte
}

// Autosaver writes the latest state to a store once no further change has
// arrived for a quiet period. While a reset is in flight, changes are
// discarded and no save takes place.
type Autosaver struct {
	store Store
	key   string
	quiet time.Duration

	mx        sync.Mutex
	pending   []byte
	reason    string
	timer     *time.Timer
	resetting bool
	closed    bool
	saves     int
	lastErr   error

	saving sync.Mutex // serializes writes to the store
}

// NewAutosaver creates an autosaver for document key of store. The quiet
// period is read from conf (key "cascade.autosave-quiet", milliseconds).
func NewAutosaver(store Store, key string, conf schuko.Configuration) *Autosaver {
	return &Autosaver{
		store: store,
		key:   key,
		quiet: core.ConfigMillis(conf, core.KeyAutosaveQuiet, core.DefaultAutosaveQuiet),
	}
}

// Notify registers a change. Earlier pending changes are superseded.
func (a *Autosaver) Notify(c Change) {
	a.mx.Lock()
	defer a.mx.Unlock()
	if a.closed {
		return
	}
	if a.resetting {
		tracer().Debugf("autosave: ignoring change %q during reset", c.Reason)
		return
	}
	a.pending, a.reason = c.Doc, c.Reason
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.quiet, a.fire)
}

func (a *Autosaver) fire() {
	if err := a.save(context.Background()); err != nil {
		tracer().Errorf("autosave failed: %v", err)
	}
}

func (a *Autosaver) save(ctx context.Context) error {
	a.saving.Lock()
	defer a.saving.Unlock()
	a.mx.Lock()
	doc, reason := a.pending, a.reason
	a.pending, a.reason = nil, ""
	if a.resetting {
		doc = nil
	}
	a.mx.Unlock()
	if doc == nil {
		return nil
	}
	err := a.store.Save(ctx, a.key, doc)
	a.mx.Lock()
	a.lastErr = err
	if err == nil {
		a.saves++
	}
	a.mx.Unlock()
	if err == nil {
		tracer().Debugf("autosave: saved after %q", reason)
	}
	return err
}

// BeginReset discards pending changes and suspends saving until EndReset.
// It waits for a save already writing to the store.
func (a *Autosaver) BeginReset() {
	a.mx.Lock()
	a.resetting = true
	a.pending, a.reason = nil, ""
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mx.Unlock()
	a.saving.Lock()
	a.saving.Unlock() //nolint:staticcheck // waits for an in-flight save
	tracer().Infof("autosave suspended for reset")
}

// EndReset resumes saving.
func (a *Autosaver) EndReset() {
	a.mx.Lock()
	defer a.mx.Unlock()
	a.resetting = false
	tracer().Infof("autosave resumed")
}

// Resetting is true between BeginReset and EndReset.
func (a *Autosaver) Resetting() bool {
	a.mx.Lock()
	defer a.mx.Unlock()
	return a.resetting
}

// Flush saves a pending change immediately.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mx.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mx.Unlock()
	return a.save(ctx)
}

// Saves returns the number of successful saves and the error of the most
// recent attempt.
func (a *Autosaver) Saves() (int, error) {
	a.mx.Lock()
	defer a.mx.Unlock()
	return a.saves, a.lastErr
}

// Close flushes a pending change and stops the autosaver. The store is not
// closed.
func (a *Autosaver) Close() error {
	err := a.Flush(context.Background())
	a.mx.Lock()
	a.closed = true
	a.mx.Unlock()
	return err
}
