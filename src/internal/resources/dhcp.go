package resources

import (
	"context"

	"github.com/maksimkurb/fbx-go/src/internal/access"
)

// DHCP is the DHCP server API.
type DHCP struct {
	r access.Requester
}

// NewDHCP returns the DHCP module.
func NewDHCP(r access.Requester) *DHCP {
	return &DHCP{r: r}
}

// Lease is a DHCP lease. Dynamic leases carry the timing fields.
type Lease struct {
	ID             string         `json:"id,omitempty"`
	MAC            string         `json:"mac"`
	IP             string         `json:"ip"`
	Hostname       string         `json:"hostname,omitempty"`
	Comment        string         `json:"comment,omitempty"`
	IsStatic       bool           `json:"is_static,omitempty"`
	LeaseRemaining int64          `json:"lease_remaining,omitempty"`
	AssignTime     int64          `json:"assign_time,omitempty"`
	RefreshTime    int64          `json:"refresh_time,omitempty"`
	Host           map[string]any `json:"host,omitempty"`
}

// Config returns the DHCP server configuration.
func (d *DHCP) Config(ctx context.Context) (map[string]any, error) {
	return access.Decode[map[string]any](d.r.Get(ctx, "dhcp/config/"))
}

// SetConfig updates the DHCP server configuration.
func (d *DHCP) SetConfig(ctx context.Context, cfg map[string]any) (map[string]any, error) {
	return access.Decode[map[string]any](d.r.Put(ctx, "dhcp/config/", cfg))
}

// DynamicLeases lists the leases handed out by the server.
func (d *DHCP) DynamicLeases(ctx context.Context) ([]Lease, error) {
	return access.Decode[[]Lease](d.r.Get(ctx, "dhcp/dynamic_lease/"))
}

// StaticLeases lists the configured static leases.
func (d *DHCP) StaticLeases(ctx context.Context) ([]Lease, error) {
	return access.Decode[[]Lease](d.r.Get(ctx, "dhcp/static_lease/"))
}
