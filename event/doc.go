// Package event provides a named-event registry with ordered synchronous
// dispatch.
//
// A Registry maps event names to listeners. Listeners are invoked in
// registration order when the event is called, each receiving the same
// arguments:
//
//	reg := event.NewRegistry(event.WithStrict())
//	reg.Declare("buffer.saved")
//
//	id, err := reg.Register("buffer.saved", func(args ...any) error {
//	    fmt.Println("saved:", args[0])
//	    return nil
//	})
//
//	err = reg.Call("buffer.saved", "main.go")
//
// # Strict mode
//
// A strict registry requires every event name to be declared before it is
// registered against or called. Referencing an undeclared name fails with
// ErrUnknownEvent. A non-strict registry accepts any name; calling a name
// with no listeners is a no-op.
//
// # Dispatch semantics
//
// Call is synchronous. Listeners run on the caller's goroutine in the order
// they were registered, across both exact-name and pattern registrations.
// The first listener error aborts the remaining listeners and is returned
// from Call wrapped with the event name; the registry never swallows or
// converts listener errors. Duplicate registrations of the same function are
// kept and fire once per registration.
//
// # Reentrancy
//
// The listener list is snapshotted before dispatch, so a listener may safely
// call Register, Unregister, or Call on the same registry. Mutations made
// during a dispatch take effect on the next Call.
//
// A Registry is safe for concurrent use from multiple goroutines.
package event
