package convert

import (
	"weak"

	"vidconv/internal/export"
)

// Observer receives the asynchronous outcome of a conversion. Exactly one of
// the methods is called for an export that completes or fails; cancelled
// exports produce no call.
type Observer interface {
	OnSuccess(output VideoOutput)
	OnFailure(err error, status export.Status)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Success func(VideoOutput)
	Failure func(error, export.Status)
}

func (f *ObserverFuncs) OnSuccess(output VideoOutput) {
	if f.Success != nil {
		f.Success(output)
	}
}

func (f *ObserverFuncs) OnFailure(err error, status export.Status) {
	if f.Failure != nil {
		f.Failure(err, status)
	}
}

// observerRef resolves the registered observer, or nil once it has been
// garbage collected.
type observerRef func() Observer

// Observe registers o on c without keeping it alive: once the caller drops
// its last reference, callbacks stop. Passing nil clears the registration.
func Observe[T any, PT interface {
	*T
	Observer
}](c *Converter, o PT) {
	if c == nil {
		return
	}
	if o == nil {
		c.observer.Store(nil)
		return
	}
	ptr := weak.Make((*T)(o))
	var ref observerRef = func() Observer {
		target := ptr.Value()
		if target == nil {
			return nil
		}
		return PT(target)
	}
	c.observer.Store(&ref)
}

func (c *Converter) currentObserver() Observer {
	ref := c.observer.Load()
	if ref == nil {
		return nil
	}
	return (*ref)()
}
