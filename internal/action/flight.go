package action

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Response is what came back for a flight: a decoded envelope or a
// transport error.
type Response struct {
	Result Result
	Err    error
}

// Settlement describes how a flight ended.
type Settlement struct {
	Kind        Kind
	ComplaintID string
	Outcome     Outcome
	Err         error
}

// Flight is one in-flight request. Send may run on any goroutine; Settle
// must run on the UI goroutine.
type Flight struct {
	Request Request

	c       *Controller
	started time.Time
	done    bool
	result  Settlement
}

// Send performs the network round-trip. It touches no UI state.
func (f *Flight) Send(ctx context.Context) Response {
	res, err := f.c.backend.Execute(ctx, f.Request)
	return Response{Result: res, Err: err}
}

// Settle applies a response: commit on success, revert on failure. Calling it
// again returns the first settlement without side effects.
func (f *Flight) Settle(resp Response) Settlement {
	if f.done {
		return f.result
	}
	f.done = true

	err := classify(resp)
	s := Settlement{Kind: f.Request.Kind, ComplaintID: f.Request.ComplaintID, Outcome: OutcomeCommitted, Err: err}
	if err != nil {
		s.Outcome = OutcomeReverted
	}

	c := f.c
	switch f.Request.Kind {
	case KindToggleStatus:
		c.settleToggle(f.Request, err)
	case KindDelete:
		c.settleDelete(f.Request, err)
	case KindUpdate:
		c.settleUpdate(f.Request, err)
	}

	fields := []zap.Field{
		zap.String("kind", f.Request.Kind.String()),
		zap.String("complaint_id", f.Request.ComplaintID),
		zap.Stringer("outcome", s.Outcome),
		zap.Duration("elapsed", c.now().Sub(f.started)),
	}
	if err != nil {
		c.log.Warn("action failed", append(fields, zap.Error(err))...)
	} else {
		c.log.Debug("action settled", fields...)
	}

	f.result = s
	return s
}

func classify(resp Response) error {
	if resp.Err != nil {
		if IsTransport(resp.Err) {
			return resp.Err
		}
		return &TransportError{Err: resp.Err}
	}
	if !resp.Result.Success {
		return &ApplicationError{Message: resp.Result.FailureMessage()}
	}
	return nil
}

func (c *Controller) settleToggle(req Request, err error) {
	row, ok := c.rows.Lookup(req.ComplaintID)
	if err != nil {
		if ok {
			row.Toggle.revert()
		}
		c.notifyFailure(err, msgToggleFailed, msgNetworkRetry)
		return
	}
	if ok {
		row.setStatus(req.Status)
		row.Toggle.commit(row.Toggle.Label)
	}
	if req.Status.Resolved() {
		c.notifier.Notify(msgResolved, SeveritySuccess)
	} else {
		c.notifier.Notify(msgReopened, SeveritySuccess)
	}
}

func (c *Controller) settleDelete(req Request, err error) {
	row, ok := c.rows.Lookup(req.ComplaintID)
	if err != nil {
		if ok {
			row.Delete.revert()
		}
		c.notifyFailure(err, msgDeleteFailed, msgNetworkCheck)
		return
	}
	if ok {
		// Stays disabled: the row is on its way out.
		row.Delete.State = ControlIdle
		row.Delete.Last = OutcomeCommitted
		row.Fading = true
		id := row.ID
		c.fader.FadeOut(id, func() {
			if c.editing == id {
				c.CloseEdit()
			}
			c.rows.Remove(id)
		})
	}
	c.notifier.Notify(msgDeleted, SeveritySuccess)
}

func (c *Controller) settleUpdate(req Request, err error) {
	if err != nil {
		c.submit.restore(OutcomeReverted)
		c.notifyFailure(err, msgUpdateFailed, msgNetworkCheck)
		return
	}
	c.submit.restore(OutcomeCommitted)
	if row, ok := c.rows.Lookup(req.ComplaintID); ok {
		row.Text = req.Text
		row.UpdatedAt = c.now()
	}
	// The surface may have moved on to another complaint meanwhile.
	if c.editing == req.ComplaintID {
		c.CloseEdit()
	}
	c.notifier.Notify(msgUpdated, SeveritySuccess)
}

func (c *Controller) notifyFailure(err error, appPrefix, networkMsg string) {
	var ae *ApplicationError
	if errors.As(err, &ae) {
		c.notifier.Notify(appPrefix+ae.Message, SeverityError)
		return
	}
	c.notifier.Notify(networkMsg, SeverityError)
}
