package events

import (
	"context"
	"errors"
)

type fanout []Emitter

// Fanout returns an Emitter that delivers each event to every non-nil emitter in order.
// Every emitter is tried; the returned error joins the individual failures.
func Fanout(emitters ...Emitter) Emitter {
	var f fanout
	for _, e := range emitters {
		if e != nil {
			f = append(f, e)
		}
	}
	if len(f) == 1 {
		return f[0]
	}
	return f
}

func (f fanout) Emit(ctx context.Context, event *Event) error {
	var errs []error
	for _, e := range f {
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
