package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/boilerdesk/internal/domain/models"
	"github.com/mamadbah2/boilerdesk/internal/server/session"
	"github.com/mamadbah2/boilerdesk/internal/service/activity"
	"github.com/mamadbah2/boilerdesk/internal/service/attendance"
	"github.com/mamadbah2/boilerdesk/internal/service/rates"
	"github.com/mamadbah2/boilerdesk/internal/service/reporting"
	"github.com/mamadbah2/boilerdesk/internal/service/staff"
	"github.com/mamadbah2/boilerdesk/internal/viewstate"
	"github.com/mamadbah2/boilerdesk/pkg/clients/recordstore"
)

// Options tune page rendering.
type Options struct {
	Location    *time.Location
	AutoDismiss time.Duration
}

// PageHandler serves the server-rendered back-office pages. Every browser
// session gets its own Workspace; the handler itself is stateless.
type PageHandler struct {
	sessions *session.Manager[*Workspace]
	bindings Bindings
	reports  *reporting.Service
	activity *activity.Service
	opts     Options
	now      func() time.Time
	logger   *zap.Logger
}

// NewPageHandler constructs the HTTP handler adapter.
func NewPageHandler(sessions *session.Manager[*Workspace], bindings Bindings, reports *reporting.Service, activitySvc *activity.Service, opts Options, logger *zap.Logger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &PageHandler{
		sessions: sessions,
		bindings: bindings,
		reports:  reports,
		activity: activitySvc,
		opts:     opts,
		now:      time.Now,
		logger:   logger,
	}
}

func (h *PageHandler) workspace(c *gin.Context) *Workspace {
	return h.sessions.Get(c)
}

// render takes the pending notice so it is shown exactly once.
func (h *PageHandler) render(c *gin.Context, ws *Workspace, status int, name string, data gin.H) {
	data["Page"] = name
	if _, ok := data["Back"]; !ok {
		data["Back"] = c.Request.URL.RequestURI()
	}
	if n, ok := ws.Sink.Take(); ok {
		data["Notice"] = n
	}
	c.HTML(status, name, data)
}

func (h *PageHandler) today() string {
	return h.now().In(h.opts.Location).Format(models.DateLayout)
}

func (h *PageHandler) thisMonth() string {
	return h.now().In(h.opts.Location).Format(models.MonthLayout)
}

// dateParam falls back to today for empty or malformed input; malformed input
// also raises a notice.
func (h *PageHandler) dateParam(ws *Workspace, page, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return h.today()
	}
	day, err := models.ParseDay(value)
	if err != nil {
		h.notify(ws, page, viewstate.LevelError, "তারিখ সঠিক নয়", value)
		return h.today()
	}
	return day.Format(models.DateLayout)
}

func (h *PageHandler) monthParam(ws *Workspace, page, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return h.thisMonth()
	}
	month, err := models.ParseMonth(value)
	if err != nil {
		h.notify(ws, page, viewstate.LevelError, "মাস সঠিক নয়", value)
		return h.thisMonth()
	}
	return month.Format(models.MonthLayout)
}

func (h *PageHandler) notify(ws *Workspace, page string, level viewstate.Level, title, message string) {
	n := viewstate.Notice{Page: page, Level: level, Title: title, Message: message, At: h.now()}
	if level == viewstate.LevelSuccess {
		n.AutoDismiss = h.opts.AutoDismiss
	}
	ws.Sink.Notify(n)
}

// surface publishes errors that pages return without a notice of their own:
// flow errors rather than record service failures.
func (h *PageHandler) surface(ws *Workspace, page string, err error) {
	var title string
	switch {
	case errors.Is(err, viewstate.ErrRowNotFound):
		title = "রেকর্ড পাওয়া যায়নি"
	case errors.Is(err, viewstate.ErrUnknownGroup), errors.Is(err, attendance.ErrInvalidStatus):
		title = "অনুরোধ সঠিক নয়"
	case errors.Is(err, viewstate.ErrInvalidTransition), errors.Is(err, viewstate.ErrNoDraft):
		title = "অন্য একটি কাজ চলছে"
	case errors.Is(err, viewstate.ErrReadOnly):
		title = "এই পাতা সম্পাদনা করা যায় না"
	default:
		return
	}
	h.logger.Debug("page flow rejected", zap.String("page", page), zap.Error(err))
	h.notify(ws, page, viewstate.LevelError, title, err.Error())
}

// statusFor maps an operation error to the status of the re-rendered page.
func statusFor(err error) int {
	var verr *viewstate.ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, viewstate.ErrRowNotFound), errors.Is(err, recordstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, viewstate.ErrUnknownGroup), errors.Is(err, viewstate.ErrNotConfirmed),
		errors.Is(err, attendance.ErrInvalidStatus), errors.Is(err, rates.ErrNoCustomers),
		errors.Is(err, staff.ErrCustomerRename):
		return http.StatusBadRequest
	case errors.Is(err, viewstate.ErrInvalidTransition), errors.Is(err, viewstate.ErrNoDraft),
		errors.Is(err, viewstate.ErrReadOnly):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// ensureLoaded reads filter unless the page already shows it without a draft.
func ensureLoaded[F comparable, T any](ctx context.Context, page *viewstate.Page[F, T], filter F) error {
	v := page.View()
	if v.Phase == viewstate.PhaseReady && v.Filter == filter && v.Err == nil {
		return nil
	}
	return page.Load(ctx, filter)
}

// openDraft makes sure the draft for key and group is open on a fresh read of
// filter. An empty key opens a draft for a new record.
func openDraft[F comparable, T any](ctx context.Context, page *viewstate.Page[F, T], filter F, key, group string) error {
	v := page.View()
	if v.Phase == viewstate.PhaseEditing && v.Filter == filter && v.Draft != nil && v.Draft.Key == key && v.Draft.Group == group {
		return nil
	}
	if err := page.Load(ctx, filter); err != nil {
		return err
	}
	if key == "" {
		_, err := page.OpenNew(group)
		return err
	}
	_, err := page.Open(key, group)
	return err
}

// formValues collects the posted fields; absent fields keep their draft value.
func formValues(c *gin.Context, names ...string) map[string]string {
	raw := make(map[string]string, len(names))
	for _, name := range names {
		if value, ok := c.GetPostForm(name); ok {
			raw[name] = value
		}
	}
	return raw
}

// draftValues returns the raw values of the open draft when it belongs to key.
func draftValues(d *viewstate.Draft, key string) map[string]string {
	if d == nil || d.Key != key {
		return nil
	}
	return d.Values
}

func withQuery(path string, pairs ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			q.Set(pairs[i], pairs[i+1])
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func (h *PageHandler) seeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// DismissNotice clears the pending notice and returns to the page it was shown on.
func (h *PageHandler) DismissNotice(c *gin.Context) {
	ws := h.workspace(c)
	ws.Sink.Dismiss()

	back := c.PostForm("back")
	if !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") {
		back = "/"
	}
	h.seeOther(c, back)
}
