package resources

import (
	"context"

	"github.com/maksimkurb/fbx-go/src/internal/access"
)

// System is the system information API.
type System struct {
	r access.Requester
}

// NewSystem returns the system module.
func NewSystem(r access.Requester) *System {
	return &System{r: r}
}

// SystemConfig holds the commonly used fields of the system description.
// The full answer is kept in Raw.
type SystemConfig struct {
	FirmwareVersion string `json:"firmware_version"`
	MAC             string `json:"mac"`
	Serial          string `json:"serial"`
	Uptime          string `json:"uptime"`
	UptimeVal       int64  `json:"uptime_val"`
	BoardName       string `json:"board_name"`
	DiskStatus      string `json:"disk_status"`
	UserMainStorage string `json:"user_main_storage"`

	Raw map[string]any `json:"-"`
}

// Config returns the system description.
func (s *System) Config(ctx context.Context) (*SystemConfig, error) {
	raw, err := s.r.Get(ctx, "system/")
	cfg, err := access.Decode[*SystemConfig](raw, err)
	if err != nil || cfg == nil {
		return cfg, err
	}
	cfg.Raw, err = access.Decode[map[string]any](raw, nil)
	return cfg, err
}

// Reboot restarts the box.
func (s *System) Reboot(ctx context.Context) error {
	return access.Discard(s.r.Post(ctx, "system/reboot/", nil))
}
