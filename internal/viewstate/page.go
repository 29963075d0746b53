// Package viewstate keeps the state of one back-office page: the rows of the last
// successful read, at most one open draft, and the outcome of the last operation.
// Rows change only by re-reading the record service after a mutation succeeds.
package viewstate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrInvalidTransition is returned for operations the current phase does not allow.
	ErrInvalidTransition = errors.New("operation not allowed in current page phase")
	// ErrNotConfirmed is returned when a deletion was requested without confirmation.
	ErrNotConfirmed = errors.New("deletion not confirmed")
	// ErrNoDraft is returned when a draft operation runs without an open draft.
	ErrNoDraft = errors.New("no open draft")
	// ErrUnknownGroup is returned when a draft names a group the page does not edit.
	ErrUnknownGroup = errors.New("unknown field group")
	// ErrRowNotFound is returned when a key is not among the displayed rows.
	ErrRowNotFound = errors.New("row not found")
	// ErrReadOnly is returned by pages whose source cannot edit or delete.
	ErrReadOnly = errors.New("page is read-only")
)

// Phase is the page state machine position.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseEditing
	PhaseSaving
	PhaseDeleting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseEditing:
		return "editing"
	case PhaseSaving:
		return "saving"
	case PhaseDeleting:
		return "deleting"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Status is what a list area should render.
type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusEmpty   Status = "empty"
	StatusRows    Status = "rows"
)

// NoFilter is the filter of collections that are always read whole.
type NoFilter struct{}

// Source reads a collection for a filter.
type Source[F comparable, T any] interface {
	List(ctx context.Context, filter F) ([]T, error)
}

// Keyer identifies rows by their natural key.
type Keyer[T any] interface {
	Key(row T) string
}

// Editor is implemented by sources whose rows can be edited or created.
type Editor[F comparable, T any] interface {
	Keyer[T]
	Groups() []Group
	// Draft copies the group's current values of row as raw text. existing tells
	// Save whether to update or create.
	Draft(row T, group string) (values map[string]string, existing bool)
	// Save sends only the draft's group.
	Save(ctx context.Context, filter F, draft Draft, values Values) error
}

// Deleter is implemented by sources whose rows can be deleted.
type Deleter[F comparable] interface {
	Delete(ctx context.Context, filter F, key string) error
}

// Draft is a page-scoped copy of one record or sub-field group. Its values are
// raw text until submission.
type Draft struct {
	Key      string
	Group    string
	Existing bool
	Values   map[string]string
}

func (d Draft) clone() Draft {
	values := make(map[string]string, len(d.Values))
	for k, v := range d.Values {
		values[k] = v
	}
	d.Values = values
	return d
}

// Value returns one raw value of the draft.
func (d Draft) Value(name string) string {
	return d.Values[name]
}

// Messages are the notice texts a page publishes.
type Messages struct {
	Saved        string
	SaveFailed   string
	Deleted      string
	DeleteFailed string
	LoadFailed   string
	Invalid      string
}

// DefaultMessages are used for any empty entry of a page's Messages.
var DefaultMessages = Messages{
	Saved:        "Saved",
	SaveFailed:   "Save failed",
	Deleted:      "Deleted",
	DeleteFailed: "Delete failed",
	LoadFailed:   "Could not load data",
	Invalid:      "Please fill in the required fields",
}

// Action describes a one-shot mutation that needs no draft, such as marking
// attendance.
type Action[F comparable] struct {
	Success string
	Failure string
	Message string
	Run     func(ctx context.Context, filter F) error
}

// Option configures a Page.
type Option func(*options)

type options struct {
	logger      *zap.Logger
	sink        *Sink
	recorder    Recorder
	messages    Messages
	autoDismiss time.Duration
	now         func() time.Time
}

// WithLogger sets the page logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSink shares a notification sink between pages.
func WithSink(s *Sink) Option {
	return func(o *options) {
		if s != nil {
			o.sink = s
		}
	}
}

// WithRecorder forwards every notice to r.
func WithRecorder(r Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithMessages overrides notice texts.
func WithMessages(m Messages) Option {
	return func(o *options) { o.messages = m }
}

// WithAutoDismiss sets how long success notices stay visible. Error notices are
// always manual.
func WithAutoDismiss(d time.Duration) Option {
	return func(o *options) { o.autoDismiss = d }
}

// WithClock overrides the notice timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// View is a snapshot of a page for rendering.
type View[F comparable, T any] struct {
	Phase  Phase
	Status Status
	Filter F
	Rows   []T
	Draft  *Draft
	Err    error
}

// Page is the generic remote-backed list with a draft editor. It is safe for
// concurrent use; the lock is never held across a remote call.
type Page[F comparable, T any] struct {
	name   string
	source Source[F, T]
	opts   options

	mu      sync.Mutex
	phase   Phase
	filter  F
	rows    []T
	loadErr error
	seq     uint64
	draft   *Draft
}

// NewPage creates an idle page reading from source.
func NewPage[F comparable, T any](name string, source Source[F, T], opts ...Option) *Page[F, T] {
	o := options{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sink == nil {
		o.sink = NewSink()
	}
	o.messages = withDefaults(o.messages)

	return &Page[F, T]{
		name:   name,
		source: source,
		opts:   o,
	}
}

func withDefaults(m Messages) Messages {
	if m.Saved == "" {
		m.Saved = DefaultMessages.Saved
	}
	if m.SaveFailed == "" {
		m.SaveFailed = DefaultMessages.SaveFailed
	}
	if m.Deleted == "" {
		m.Deleted = DefaultMessages.Deleted
	}
	if m.DeleteFailed == "" {
		m.DeleteFailed = DefaultMessages.DeleteFailed
	}
	if m.LoadFailed == "" {
		m.LoadFailed = DefaultMessages.LoadFailed
	}
	if m.Invalid == "" {
		m.Invalid = DefaultMessages.Invalid
	}
	return m
}

// Name is the page name used in notices and logs.
func (p *Page[F, T]) Name() string { return p.name }

// Sink is the page's notification sink.
func (p *Page[F, T]) Sink() *Sink { return p.opts.sink }

// Phase returns the current phase.
func (p *Page[F, T]) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// View returns a snapshot whose rows and draft are copies.
func (p *Page[F, T]) View() View[F, T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := View[F, T]{
		Phase:  p.phase,
		Filter: p.filter,
		Rows:   slices.Clone(p.rows),
		Err:    p.loadErr,
	}
	if p.draft != nil {
		d := p.draft.clone()
		v.Draft = &d
	}

	switch {
	case p.phase == PhaseIdle || p.phase == PhaseLoading:
		v.Status = StatusLoading
	case p.loadErr != nil:
		v.Status = StatusError
	case len(p.rows) == 0:
		v.Status = StatusEmpty
	default:
		v.Status = StatusRows
	}
	return v
}

// Load reads the collection for filter and replaces every row. It is the mount
// and filter-change transition. An open draft is discarded. A response that is
// overtaken by a newer Load is dropped.
func (p *Page[F, T]) Load(ctx context.Context, filter F) error {
	p.mu.Lock()
	if p.phase == PhaseSaving || p.phase == PhaseDeleting {
		p.mu.Unlock()
		return fmt.Errorf("load %s while %s: %w", p.name, p.phase, ErrInvalidTransition)
	}
	p.draft = nil
	tag := p.beginLoad(filter)
	p.mu.Unlock()

	return p.fetch(ctx, tag, filter)
}

// Reload re-reads the current filter.
func (p *Page[F, T]) Reload(ctx context.Context) error {
	p.mu.Lock()
	filter := p.filter
	p.mu.Unlock()
	return p.Load(ctx, filter)
}

// beginLoad must be called with p.mu held.
func (p *Page[F, T]) beginLoad(filter F) uint64 {
	p.seq++
	p.phase = PhaseLoading
	p.filter = filter
	return p.seq
}

func (p *Page[F, T]) fetch(ctx context.Context, tag uint64, filter F) error {
	rows, err := p.source.List(ctx, filter)

	p.mu.Lock()
	if tag != p.seq {
		p.mu.Unlock()
		p.opts.logger.Debug("discarding stale page response",
			zap.String("page", p.name),
			zap.Any("filter", filter),
			zap.Uint64("tag", tag))
		return nil
	}

	p.phase = PhaseReady
	if err != nil {
		p.rows = nil
		p.loadErr = err
		p.mu.Unlock()

		p.opts.logger.Warn("page load failed", zap.String("page", p.name), zap.Any("filter", filter), zap.Error(err))
		p.publish(ctx, LevelError, p.opts.messages.LoadFailed, err.Error())
		return err
	}

	p.rows = rows
	p.loadErr = nil
	p.mu.Unlock()
	return nil
}

// Open starts a draft from the displayed row with the given key.
func (p *Page[F, T]) Open(key, group string) (Draft, error) {
	editor, ok := p.source.(Editor[F, T])
	if !ok {
		return Draft{}, ErrReadOnly
	}
	if _, ok := findGroup(editor.Groups(), group); !ok {
		return Draft{}, fmt.Errorf("%s: %w", group, ErrUnknownGroup)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.phase != PhaseReady && p.phase != PhaseEditing {
		return Draft{}, fmt.Errorf("open draft while %s: %w", p.phase, ErrInvalidTransition)
	}

	for _, row := range p.rows {
		if editor.Key(row) != key {
			continue
		}
		values, existing := editor.Draft(row, group)
		d := Draft{Key: key, Group: group, Existing: existing, Values: values}
		d = d.clone()
		p.draft = &d
		p.phase = PhaseEditing
		return d.clone(), nil
	}
	return Draft{}, fmt.Errorf("%s: %w", key, ErrRowNotFound)
}

// OpenNew starts a draft for a record that does not exist yet.
func (p *Page[F, T]) OpenNew(group string) (Draft, error) {
	editor, ok := p.source.(Editor[F, T])
	if !ok {
		return Draft{}, ErrReadOnly
	}
	g, ok := findGroup(editor.Groups(), group)
	if !ok {
		return Draft{}, fmt.Errorf("%s: %w", group, ErrUnknownGroup)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.phase != PhaseReady && p.phase != PhaseEditing {
		return Draft{}, fmt.Errorf("open draft while %s: %w", p.phase, ErrInvalidTransition)
	}

	d := Draft{Group: group, Values: g.Blank()}
	p.draft = &d
	p.phase = PhaseEditing
	return d.clone(), nil
}

// Set changes one raw value of the open draft.
func (p *Page[F, T]) Set(name, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase != PhaseEditing || p.draft == nil {
		return ErrNoDraft
	}
	p.draft.Values[name] = value
	return nil
}

// Cancel discards the open draft unconditionally.
func (p *Page[F, T]) Cancel() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase != PhaseEditing {
		return fmt.Errorf("cancel while %s: %w", p.phase, ErrInvalidTransition)
	}
	p.draft = nil
	p.phase = PhaseReady
	return nil
}

// Submit merges raw into the open draft, coerces it and saves it. Validation
// failures issue no request. On failure the draft is kept for a manual retry; on
// success the draft is dropped and the page re-reads its filter.
func (p *Page[F, T]) Submit(ctx context.Context, raw map[string]string) error {
	editor, ok := p.source.(Editor[F, T])
	if !ok {
		return ErrReadOnly
	}

	p.mu.Lock()
	if p.phase != PhaseEditing || p.draft == nil {
		p.mu.Unlock()
		return ErrNoDraft
	}

	group, ok := findGroup(editor.Groups(), p.draft.Group)
	if !ok {
		p.mu.Unlock()
		return fmt.Errorf("%s: %w", p.draft.Group, ErrUnknownGroup)
	}
	for name, value := range raw {
		if _, known := group.Field(name); known {
			p.draft.Values[name] = value
		}
	}

	values, err := Coerce(group, p.draft.Values)
	if err != nil {
		p.mu.Unlock()
		p.publish(ctx, LevelError, p.opts.messages.Invalid, err.Error())
		return err
	}

	draft := p.draft.clone()
	filter := p.filter
	p.phase = PhaseSaving
	p.mu.Unlock()

	if err := editor.Save(ctx, filter, draft, values); err != nil {
		p.mu.Lock()
		p.phase = PhaseEditing
		p.mu.Unlock()

		p.opts.logger.Warn("page save failed",
			zap.String("page", p.name),
			zap.String("key", draft.Key),
			zap.String("group", draft.Group),
			zap.Error(err))
		p.publish(ctx, LevelError, p.opts.messages.SaveFailed, err.Error())
		return err
	}

	p.mu.Lock()
	p.draft = nil
	tag := p.beginLoad(filter)
	p.mu.Unlock()

	p.publish(ctx, LevelSuccess, p.opts.messages.Saved, describe(draft))
	// The save succeeded; a failing re-read is reported through the sink only.
	_ = p.fetch(ctx, tag, filter)
	return nil
}

// Delete removes the row with key after the user confirmed it. Without
// confirmation no request is issued.
func (p *Page[F, T]) Delete(ctx context.Context, key string, confirmed bool) error {
	deleter, ok := p.source.(Deleter[F])
	if !ok {
		return ErrReadOnly
	}
	if !confirmed {
		return ErrNotConfirmed
	}

	p.mu.Lock()
	if p.phase != PhaseReady {
		p.mu.Unlock()
		return fmt.Errorf("delete while %s: %w", p.phase, ErrInvalidTransition)
	}
	if keyer, ok := p.source.(Keyer[T]); ok && !p.hasKey(keyer, key) {
		p.mu.Unlock()
		return fmt.Errorf("%s: %w", key, ErrRowNotFound)
	}
	filter := p.filter
	p.phase = PhaseDeleting
	p.mu.Unlock()

	if err := deleter.Delete(ctx, filter, key); err != nil {
		p.mu.Lock()
		p.phase = PhaseReady
		p.mu.Unlock()

		p.opts.logger.Warn("page delete failed", zap.String("page", p.name), zap.String("key", key), zap.Error(err))
		p.publish(ctx, LevelError, p.opts.messages.DeleteFailed, err.Error())
		return err
	}

	p.mu.Lock()
	tag := p.beginLoad(filter)
	p.mu.Unlock()

	p.publish(ctx, LevelSuccess, p.opts.messages.Deleted, key)
	_ = p.fetch(ctx, tag, filter)
	return nil
}

// Act runs a one-shot mutation from the Ready phase. Success re-reads the
// filter; failure returns to Ready with an error notice.
func (p *Page[F, T]) Act(ctx context.Context, action Action[F]) error {
	p.mu.Lock()
	if p.phase != PhaseReady {
		p.mu.Unlock()
		return fmt.Errorf("act while %s: %w", p.phase, ErrInvalidTransition)
	}
	filter := p.filter
	p.phase = PhaseSaving
	p.mu.Unlock()

	if err := action.Run(ctx, filter); err != nil {
		p.mu.Lock()
		p.phase = PhaseReady
		p.mu.Unlock()

		failure := action.Failure
		if failure == "" {
			failure = p.opts.messages.SaveFailed
		}
		p.opts.logger.Warn("page action failed", zap.String("page", p.name), zap.String("action", action.Success), zap.Error(err))
		p.publish(ctx, LevelError, failure, err.Error())
		return err
	}

	p.mu.Lock()
	tag := p.beginLoad(filter)
	p.mu.Unlock()

	success := action.Success
	if success == "" {
		success = p.opts.messages.Saved
	}
	p.publish(ctx, LevelSuccess, success, action.Message)
	_ = p.fetch(ctx, tag, filter)
	return nil
}

// hasKey must be called with p.mu held.
func (p *Page[F, T]) hasKey(keyer Keyer[T], key string) bool {
	for _, row := range p.rows {
		if keyer.Key(row) == key {
			return true
		}
	}
	return false
}

func (p *Page[F, T]) publish(ctx context.Context, level Level, title, message string) {
	n := Notice{
		Page:    p.name,
		Level:   level,
		Title:   title,
		Message: message,
		At:      p.opts.now(),
	}
	if level == LevelSuccess {
		n.AutoDismiss = p.opts.autoDismiss
	}

	p.opts.sink.Notify(n)
	if p.opts.recorder != nil {
		p.opts.recorder.Record(ctx, n)
	}
}

func findGroup(groups []Group, name string) (Group, bool) {
	for _, g := range groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

func describe(d Draft) string {
	if d.Key == "" {
		return d.Group
	}
	return d.Key + " · " + d.Group
}
