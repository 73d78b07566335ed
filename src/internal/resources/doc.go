// Package resources exposes the box sub-APIs as typed method sets.
//
// Each method formats a path, optionally a payload, and hands both to the
// dispatcher (access.Requester). Modules keep no state of their own and do
// not retry; session handling lives entirely in the dispatcher.
//
// Endpoints the box answers without a result return only an error.
// Payload defaults are functions returning fresh values, so callers can
// modify them freely:
//
//	req := resources.DefaultDownloadURL()
//	req.DownloadURL = "https://example.org/file.iso"
//	added, err := client.Download.AddFromURL(ctx, req)
package resources
