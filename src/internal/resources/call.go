package resources

import (
	"context"
	"fmt"

	"github.com/maksimkurb/fbx-go/src/internal/access"
)

// Call is the phone call log API.
type Call struct {
	r access.Requester
}

// NewCall returns the call module.
func NewCall(r access.Requester) *Call {
	return &Call{r: r}
}

// CallType tells answered, missed and outgoing calls apart.
type CallType string

const (
	CallMissed   CallType = "missed"
	CallAccepted CallType = "accepted"
	CallOutgoing CallType = "outgoing"
)

// CallEntry is an entry of the call log.
type CallEntry struct {
	ID        int      `json:"id"`
	Type      CallType `json:"type"`
	Datetime  int64    `json:"datetime"`
	Number    string   `json:"number"`
	Name      string   `json:"name"`
	Duration  int      `json:"duration"`
	New       bool     `json:"new"`
	ContactID int      `json:"contact_id"`
}

// Log lists the call log.
func (c *Call) Log(ctx context.Context) ([]CallEntry, error) {
	return access.Decode[[]CallEntry](c.r.Get(ctx, "call/log/"))
}

// MarkAllRead clears the "new" flag of every entry.
func (c *Call) MarkAllRead(ctx context.Context) error {
	return access.Discard(c.r.Post(ctx, "call/log/mark_all_as_read/", nil))
}

// Delete removes one entry.
func (c *Call) Delete(ctx context.Context, id int) error {
	return access.Discard(c.r.Delete(ctx, fmt.Sprintf("call/log/%d", id), nil))
}
