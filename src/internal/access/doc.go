// Package access dispatches authenticated calls to the box.
//
// An Access owns one session. The first call opens it with the stored app
// token; later calls reuse it. When the box answers that the session has
// expired, Access opens a new one and replays the call exactly once.
// Concurrent callers that hit the expiry together share a single login.
//
//	acc := access.New(tr, manager, "fr.example.app")
//	tasks, err := access.Decode[[]Task](acc.Get(ctx, "downloads/"))
package access
