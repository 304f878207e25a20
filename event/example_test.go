package event_test

import (
	"fmt"

	"github.com/dshills/plugkit/event"
)

func ExampleRegistry() {
	reg := event.NewRegistry(event.WithStrict())
	reg.Declare("buffer.saved")

	reg.Register("buffer.saved", func(args ...any) error {
		fmt.Println("saved:", args[0])
		return nil
	})

	reg.Call("buffer.saved", "main.go")
	// Output: saved: main.go
}

func ExampleRegistry_RegisterPattern() {
	reg := event.NewRegistry()

	reg.RegisterPattern("buffer.*", func(args ...any) error {
		fmt.Println("buffer event")
		return nil
	})

	reg.Call("buffer.saved")
	reg.Call("config.changed")
	// Output: buffer event
}
