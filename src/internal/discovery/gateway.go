package discovery

import (
	"net"

	"github.com/vishvananda/netlink"

	"github.com/maksimkurb/fbx-go/src/internal/log"
)

// DefaultGateway returns the IPv4 default gateway of the main routing
// table. The box is usually the gateway of the network it serves.
func DefaultGateway() (net.IP, error) {
	routes, err := netlink.RouteListFiltered(netlink.FAMILY_V4, &netlink.Route{Table: 254}, netlink.RT_FILTER_TABLE)
	if err != nil {
		return nil, err
	}
	return defaultGateway(routes), nil
}

func defaultGateway(routes []netlink.Route) net.IP {
	var best *netlink.Route
	for i := range routes {
		r := &routes[i]
		if r.Gw == nil {
			continue
		}
		if r.Dst != nil {
			if ones, _ := r.Dst.Mask.Size(); ones != 0 {
				continue
			}
		}
		if best == nil || r.Priority < best.Priority {
			best = r
		}
	}
	if best == nil {
		return nil
	}
	log.Debugf("[discovery] default gateway %s (metric %d)", best.Gw, best.Priority)
	return best.Gw
}
