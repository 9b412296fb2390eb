package action

// ControlState is the per-control state machine:
//
//	idle -> pending -> (committed | reverted) -> idle
//
// Committed and reverted are recorded in Outcome; the control itself is
// idle again as soon as a request settles.
type ControlState int

const (
	ControlIdle ControlState = iota
	ControlPending
)

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCommitted
	OutcomeReverted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeReverted:
		return "reverted"
	default:
		return "none"
	}
}

// Control is a clickable element whose label and enabled state are driven by
// the controller.
type Control struct {
	Label    string
	Title    string
	Disabled bool
	State    ControlState
	Last     Outcome

	saved string
}

func NewControl(label string) Control {
	return Control{Label: label}
}

func (c *Control) Busy() bool { return c.State == ControlPending || c.Disabled }

// begin enters pending synchronously, before any request is sent.
func (c *Control) begin(loading string) error {
	if c.Busy() {
		return ErrControlBusy
	}
	c.saved = c.Label
	c.Label = loading
	c.Disabled = true
	c.State = ControlPending
	return nil
}

// commit re-enables the control with a (possibly new) label.
func (c *Control) commit(label string) {
	c.Label = label
	c.Disabled = false
	c.State = ControlIdle
	c.Last = OutcomeCommitted
	c.saved = ""
}

// revert restores the pre-action label and enabled state.
func (c *Control) revert() {
	c.Label = c.saved
	c.Disabled = false
	c.State = ControlIdle
	c.Last = OutcomeReverted
	c.saved = ""
}

// restore re-enables with the pre-action label but records the given outcome.
// The update submit control uses it: its label never changes on success.
func (c *Control) restore(o Outcome) {
	c.revert()
	c.Last = o
}

// ToggleControl carries the resolved attribute next to the control state.
type ToggleControl struct {
	Control
	Resolved bool
}

func newToggleControl(resolved bool) ToggleControl {
	t := ToggleControl{}
	t.apply(resolved)
	return t
}

func (t *ToggleControl) apply(resolved bool) {
	t.Resolved = resolved
	if resolved {
		t.Label = LabelReopen
		t.Title = TitleReopen
	} else {
		t.Label = LabelResolve
		t.Title = TitleResolve
	}
}
