package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"complaint-desk/internal/action"
)

var actionPaths = map[action.Kind]string{
	action.KindToggleStatus: "/toggle_complaint_status",
	action.KindDelete:       "/delete_complaint",
	action.KindUpdate:       "/update_complaint",
}

// Execute posts one action. Dial/IO failures, non-2xx statuses and bodies
// that are not a JSON envelope with a success field all come back as
// *action.TransportError; a decoded success:false answer is returned as-is
// with a nil error.
func (c *Client) Execute(ctx context.Context, req action.Request) (action.Result, error) {
	path, ok := actionPaths[req.Kind]
	if !ok {
		return action.Result{}, fmt.Errorf("%w: %v", action.ErrUnknownKind, req.Kind)
	}
	status, raw, err := c.do(ctx, http.MethodPost, path, req.Body())
	if err != nil {
		return action.Result{}, &action.TransportError{Status: status, Err: err}
	}
	if status < 200 || status > 299 {
		var cause error
		if msg := messageOf(raw); msg != "" {
			cause = errors.New(msg)
		}
		return action.Result{}, &action.TransportError{Status: status, Err: cause}
	}
	// A body without a success field ("null", "{}") is not an answer.
	var env struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return action.Result{}, &action.TransportError{Status: status, Err: fmt.Errorf("decode response: %w", err)}
	}
	if env.Success == nil {
		return action.Result{}, &action.TransportError{Status: status, Err: errMissingSuccess}
	}
	return action.Result{Success: *env.Success, Message: env.Message}, nil
}

var errMissingSuccess = errors.New("response has no success field")
