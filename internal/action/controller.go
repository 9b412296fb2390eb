package action

import (
	"context"
	"strings"
	"time"

	"complaint-desk/internal/model"

	"go.uber.org/zap"
)

type handler func(in Intent) error

// Controller executes one optimistic transition per user action: the
// triggering control is disabled and relabelled synchronously, one request
// is dispatched, and the settled response either commits the row update or
// reverts the control. Every failure ends in a notification.
//
// A Controller is not safe for concurrent use; all methods except
// Flight.Send must run on the UI goroutine.
type Controller struct {
	backend  Backend
	rows     *Registry
	notifier Notifier
	confirm  Confirmer
	edit     EditSurface
	fader    Fader
	dispatch Dispatcher
	log      *zap.Logger
	now      func() time.Time

	submit  Control
	editing string

	handlers map[Kind]handler
}

type Option func(*Controller)

func WithNotifier(n Notifier) Option       { return func(c *Controller) { c.notifier = n } }
func WithConfirmer(cf Confirmer) Option    { return func(c *Controller) { c.confirm = cf } }
func WithEditSurface(e EditSurface) Option { return func(c *Controller) { c.edit = e } }
func WithFader(f Fader) Option             { return func(c *Controller) { c.fader = f } }
func WithDispatcher(d Dispatcher) Option   { return func(c *Controller) { c.dispatch = d } }
func WithLogger(l *zap.Logger) Option      { return func(c *Controller) { c.log = l } }
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New builds a controller over rows. Without options it dispatches inline,
// declines every confirmation and discards notifications.
func New(backend Backend, rows *Registry, opts ...Option) *Controller {
	if rows == nil {
		rows = NewRegistry(nil)
	}
	c := &Controller{
		backend:  backend,
		rows:     rows,
		notifier: noopNotifier{},
		confirm:  NeverConfirm,
		edit:     noopEditSurface{},
		fader:    immediateFade,
		dispatch: Inline(context.Background()),
		log:      zap.NewNop(),
		now:      time.Now,
		submit:   NewControl(LabelUpdate),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.handlers = map[Kind]handler{
		KindToggleStatus: c.toggleStatus,
		KindDelete:       c.delete,
		KindUpdate:       c.update,
	}
	return c
}

func (c *Controller) Rows() *Registry { return c.rows }

// Submit returns the edit surface's submit control.
func (c *Controller) Submit() Control { return c.submit }

// Editing returns the id currently open in the edit surface ("" if closed).
func (c *Controller) Editing() string { return c.editing }

// Handle starts the action described by in. It never blocks on the network.
//
// The returned error only reports a pre-flight rejection (validation, busy
// control, unknown row); request failures are reported through the notifier
// when the flight settles.
func (c *Controller) Handle(in Intent) error {
	h, ok := c.handlers[in.Kind]
	if !ok {
		return ErrUnknownKind
	}
	in.ComplaintID = strings.TrimSpace(in.ComplaintID)
	return h(in)
}

// OpenEdit opens the edit surface prefilled with the row's current values.
func (c *Controller) OpenEdit(id string) error {
	row, ok := c.rows.Lookup(id)
	if !ok {
		return ErrRowNotFound
	}
	c.editing = row.ID
	c.edit.Open(row.ID, row.Email, row.Text)
	return nil
}

func (c *Controller) CloseEdit() {
	c.editing = ""
	c.edit.Close()
}

func (c *Controller) toggleStatus(in Intent) error {
	if !in.Status.Valid() {
		return &ValidationError{Field: "status", Message: "expected pending or resolved"}
	}
	row, ok := c.rows.Lookup(in.ComplaintID)
	if !ok {
		return ErrRowNotFound
	}
	// A fading row is already deleted on the server.
	if row.Fading {
		return ErrControlBusy
	}
	if err := row.Toggle.begin(LabelProcessing); err != nil {
		return err
	}
	c.launch(Request{Kind: KindToggleStatus, ComplaintID: row.ID, Status: in.Status.Toggle()})
	return nil
}

func (c *Controller) delete(in Intent) error {
	row, ok := c.rows.Lookup(in.ComplaintID)
	if !ok {
		return ErrRowNotFound
	}
	if row.Delete.Busy() || row.Fading {
		return ErrControlBusy
	}
	id := row.ID
	c.confirm.Confirm(DeletePrompt, func() {
		// The row may have changed while the prompt was open.
		row, ok := c.rows.Lookup(id)
		if !ok || row.Fading {
			return
		}
		if err := row.Delete.begin(LabelDeleting); err != nil {
			c.log.Debug("delete ignored", zap.String("complaint_id", id), zap.Error(err))
			return
		}
		c.launch(Request{Kind: KindDelete, ComplaintID: id})
	})
	return nil
}

func (c *Controller) update(in Intent) error {
	text, err := model.ValidateComplaintText(in.Text)
	if err != nil {
		msg := TextProblem(err)
		c.notifier.Notify(msg, SeverityError)
		return &ValidationError{Field: "complaint", Message: msg}
	}
	if err := c.submit.begin(LabelUpdating); err != nil {
		return err
	}
	c.launch(Request{Kind: KindUpdate, ComplaintID: in.ComplaintID, Text: text})
	return nil
}

func (c *Controller) launch(req Request) {
	f := &Flight{Request: req, c: c, started: c.now()}
	c.log.Debug("action dispatched",
		zap.String("kind", req.Kind.String()),
		zap.String("complaint_id", req.ComplaintID),
	)
	c.dispatch.Dispatch(f)
}
