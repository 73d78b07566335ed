// Package freebox wires the box client together from configuration.
//
// A Client discovers the box, builds the transport with the configured
// certificate verification, loads the app token and exposes the resource
// modules over a single authenticated dispatcher:
//
//	client, err := freebox.New(cfg, freebox.Options{})
//	if err := client.Open(ctx); err != nil { ... }
//	defer client.Close(ctx)
//	tasks, err := client.Download.Tasks(ctx)
package freebox
