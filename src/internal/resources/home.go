package resources

import (
	"context"
	"fmt"

	"github.com/maksimkurb/fbx-go/src/internal/access"
)

// Home is the home automation API. Node descriptions vary by device kind
// and are returned undecoded.
type Home struct {
	r access.Requester
}

// NewHome returns the home automation module.
func NewHome(r access.Requester) *Home {
	return &Home{r: r}
}

// Nodes lists the paired devices.
func (h *Home) Nodes(ctx context.Context) ([]map[string]any, error) {
	return access.Decode[[]map[string]any](h.r.Get(ctx, "home/nodes"))
}

// Node returns one device.
func (h *Home) Node(ctx context.Context, id int) (map[string]any, error) {
	return access.Decode[map[string]any](h.r.Get(ctx, fmt.Sprintf("home/nodes/%d", id)))
}

// Tileset returns the dashboard tiles of every device.
func (h *Home) Tileset(ctx context.Context) ([]map[string]any, error) {
	return access.Decode[[]map[string]any](h.r.Get(ctx, "home/tileset/all"))
}

// Cameras lists the cameras.
func (h *Home) Cameras(ctx context.Context) ([]map[string]any, error) {
	return access.Decode[[]map[string]any](h.r.Get(ctx, "camera"))
}
