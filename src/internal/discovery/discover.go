package discovery

import (
	"context"
	"errors"
	"time"

	fbxerrors "github.com/maksimkurb/fbx-go/src/internal/errors"
	"github.com/maksimkurb/fbx-go/src/internal/log"
	"github.com/maksimkurb/fbx-go/src/internal/transport"
)

// Options controls Discover.
type Options struct {
	// Host is tried first when set.
	Host string
	Port uint16
	// HTTPS probes api_version over TLS.
	HTTPS bool
	// Timeout bounds each fallback (mDNS, gateway).
	Timeout time.Duration
	// Client performs the api_version probes.
	Client transport.HTTPClient

	// MDNSAddr overrides the multicast group. Empty disables mDNS.
	MDNSAddr string
	// Gateway returns the default gateway host. Nil disables the fallback.
	Gateway func() (string, error)
}

// DefaultGatewayHost adapts DefaultGateway for Options.Gateway.
func DefaultGatewayHost() (string, error) {
	ip, err := DefaultGateway()
	if err != nil || ip == nil {
		return "", err
	}
	return ip.String(), nil
}

// Discover locates the box: the configured host, then mDNS, then the
// default gateway.
func Discover(ctx context.Context, opts Options) (*BoxInfo, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	var errs []error

	if opts.Host != "" {
		info, err := Probe(ctx, opts.Client, opts.Host, opts.Port, opts.HTTPS)
		if err == nil {
			return info, nil
		}
		log.Warnf("Box not reachable at %s: %v", opts.Host, err)
		errs = append(errs, err)
	}

	if opts.MDNSAddr != "" {
		mctx, cancel := context.WithTimeout(ctx, opts.Timeout)
		boxes, err := Browse(mctx, opts.MDNSAddr)
		cancel()
		switch {
		case err != nil:
			log.Debugf("[discovery] mDNS failed: %v", err)
			errs = append(errs, err)
		case len(boxes) > 0:
			if len(boxes) > 1 {
				log.Warnf("Found %d boxes over mDNS, using %s (%s)", len(boxes), boxes[0].DeviceName, boxes[0].Host)
			}
			return boxes[0], nil
		}
	}

	if opts.Gateway != nil {
		gw, err := opts.Gateway()
		if err != nil {
			errs = append(errs, err)
		} else if gw != "" {
			gctx, cancel := context.WithTimeout(ctx, opts.Timeout)
			info, err := Probe(gctx, opts.Client, gw, 0, false)
			cancel()
			if err == nil {
				return info, nil
			}
			errs = append(errs, err)
		}
	}

	return nil, fbxerrors.NewTransportError("box not found on the local network", errors.Join(errs...))
}
