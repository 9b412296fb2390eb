package tui

import (
	"context"

	"complaint-desk/internal/action"
	"complaint-desk/internal/api"
	"complaint-desk/internal/model"
)

// Service is the backend as seen by the dashboard. *api.Client implements it.
type Service interface {
	action.Backend
	List(ctx context.Context) ([]model.Complaint, error)
	Submit(ctx context.Context, text string) (model.Complaint, error)
	Subscribe(ctx context.Context) (<-chan api.Event, error)
}

type modalKind int

const (
	modalNone modalKind = iota
	modalConfirm
	modalEdit
	modalCompose
)

type complaintsLoadedMsg struct {
	complaints []model.Complaint
	err        error
}

// flightDoneMsg carries a finished round-trip back to the UI goroutine.
type flightDoneMsg struct {
	flight *action.Flight
	resp   action.Response
}

type toastDoneMsg struct{ seq int }

type fadeDoneMsg struct{ id string }

type submittedMsg struct {
	complaint model.Complaint
	err       error
}

type subscribedMsg struct {
	events <-chan api.Event
	err    error
}

type feedMsg struct {
	event api.Event
	ok    bool
}
