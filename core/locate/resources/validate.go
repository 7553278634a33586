package resources

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/typecascade/core"
	"github.com/npillmayer/typecascade/core/font"
)

// CheckFunc validates a font binary. It runs on a worker goroutine.
type CheckFunc func(data []byte) error

// ParseFunc parses an admitted font binary on the calling goroutine.
type ParseFunc func(data []byte) (*font.ScalableFont, error)

// Validator validates untrusted font binaries on a worker goroutine.
// A Validator is safe for concurrent use.
type Validator struct {
	timeout    time.Duration
	check      CheckFunc
	parse      ParseFunc
	mu         sync.Mutex
	w          *worker
	generation int
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithTimeout overrides the configured timeout.
func WithTimeout(d time.Duration) ValidatorOption {
	return func(v *Validator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithCheck replaces the default check, which parses the binary.
func WithCheck(check CheckFunc) ValidatorOption {
	return func(v *Validator) {
		if check != nil {
			v.check = check
		}
	}
}

// WithParse replaces the parser used for admitted binaries.
func WithParse(parse ParseFunc) ValidatorOption {
	return func(v *Validator) {
		if parse != nil {
			v.parse = parse
		}
	}
}

// NewValidator creates a validator. The timeout is read from configuration
// key 'cascade.validation-timeout' (milliseconds, default 3 seconds).
// conf may be nil.
func NewValidator(conf schuko.Configuration, opts ...ValidatorOption) *Validator {
	v := &Validator{
		timeout: core.ConfigMillis(conf, core.KeyValidationTimeout, core.DefaultValidationTimeout),
		check:   parseCheck,
		parse:   font.ParseOpenTypeFont,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// parseCheck is the default check: a full parse plus a probe of the
// character map.
func parseCheck(data []byte) error {
	f, err := font.ParseOpenTypeFont(data)
	if err != nil {
		return err
	}
	_ = f.GlyphIndex('A')
	return nil
}

// Generation counts the workers created so far.
func (v *Validator) Generation() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.generation
}

// Validate sends data to the worker and waits for its verdict. If the worker
// does not answer within the timeout, the binary is rejected with ETIMEOUT
// and the worker is discarded; the next call will create a new one.
func (v *Validator) Validate(ctx context.Context, data []byte) error {
	w := v.acquire()
	req := request{data: data, reply: make(chan error, 1)}
	timer := time.NewTimer(v.timeout)
	defer timer.Stop()
	select {
	case w.requests <- req:
	case <-timer.C:
		v.discard(w)
		return core.Error(core.ETIMEOUT, "font validation did not start within %s", v.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		if err != nil {
			return core.WrapError(err, core.EINVALID, "font file rejected")
		}
		return nil
	case <-timer.C:
		tracer().Errorf("font validation timed out after %s, recycling worker", v.timeout)
		v.discard(w)
		return core.Error(core.ETIMEOUT, "font validation timed out after %s", v.timeout)
	case <-ctx.Done():
		v.discard(w) // the worker is still busy with our request
		return ctx.Err()
	}
}

// Ingest validates data on the worker and, if accepted, parses it a second
// time on the calling goroutine. Only the result of the second parse is
// handed out. A crash of the second parse rejects the binary.
func (v *Validator) Ingest(ctx context.Context, fileName string, data []byte) (*font.ScalableFont, error) {
	if err := v.Validate(ctx, data); err != nil {
		tracer().Infof("rejected font %s: %v", fileName, err)
		return nil, err
	}
	f, err := safeParse(v.parse, data)
	if err != nil {
		tracer().Errorf("admitted font %s failed to parse: %v", fileName, err)
		return nil, err
	}
	f.Filepath = fileName
	tracer().Debugf("admitted font %s", fileName)
	return f, nil
}

// Close stops the current worker, if any.
func (v *Validator) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.w != nil {
		close(v.w.quit)
		v.w = nil
	}
}

func (v *Validator) acquire() *worker {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.w == nil {
		v.generation++
		v.w = startWorker(v.check, v.generation)
	}
	return v.w
}

func (v *Validator) discard(w *worker) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.w == w {
		close(w.quit)
		v.w = nil
	}
}

// --- Worker ----------------------------------------------------------------

type request struct {
	data  []byte
	reply chan error // buffered, a discarded worker never blocks on it
}

// A worker serves one request at a time. Goroutines cannot be killed: a
// discarded worker stops as soon as its current check returns.
type worker struct {
	requests chan request
	quit     chan struct{}
}

func startWorker(check CheckFunc, generation int) *worker {
	w := &worker{
		requests: make(chan request),
		quit:     make(chan struct{}),
	}
	tracer().Debugf("starting validation worker #%d", generation)
	go w.run(check)
	return w
}

func (w *worker) run(check CheckFunc) {
	for {
		select {
		case <-w.quit:
			return
		case req := <-w.requests:
			req.reply <- safeCheck(check, req.data)
		}
	}
}

func safeCheck(check CheckFunc, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = core.Error(core.EINVALID, "font parser crashed: %v", r)
		}
	}()
	if check == nil {
		return fmt.Errorf("no font check configured")
	}
	return check(data)
}

func safeParse(parse ParseFunc, data []byte) (f *font.ScalableFont, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, core.Error(core.EINVALID, "font parser crashed: %v", r)
		}
	}()
	return parse(data)
}
