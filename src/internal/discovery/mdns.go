package discovery

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/maksimkurb/fbx-go/src/internal/log"
)

const (
	// ServiceName is the mDNS service announced by the box.
	ServiceName = "_fbx-api._tcp.local."
	// MDNSAddr is the IPv4 mDNS multicast group.
	MDNSAddr = "224.0.0.251:5353"
)

// Browse sends one mDNS query for ServiceName to addr and collects the
// boxes that answer until ctx is done.
func Browse(ctx context.Context, addr string) ([]*BoxInfo, error) {
	dst, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero})
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	query := new(dns.Msg)
	query.SetQuestion(ServiceName, dns.TypePTR)
	query.RecursionDesired = false
	query.Id = 0
	packed, err := query.Pack()
	if err != nil {
		return nil, err
	}

	log.Debugf("[discovery] mDNS query %s to %s", ServiceName, addr)
	if _, err := conn.WriteToUDP(packed, dst); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(3 * time.Second)
	}
	_ = conn.SetReadDeadline(deadline)
	go func() {
		<-ctx.Done()
		_ = conn.SetReadDeadline(time.Now())
	}()

	seen := make(map[string]bool)
	var boxes []*BoxInfo
	buf := make([]byte, 65535)
	for {
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			// Deadline reached.
			break
		}
		msg := new(dns.Msg)
		if err := msg.Unpack(buf[:n]); err != nil {
			log.Debugf("[discovery] ignoring malformed mDNS packet from %s: %v", from, err)
			continue
		}
		for _, info := range ParseResponse(msg, from.IP) {
			key := info.UID + "|" + info.Host
			if seen[key] {
				continue
			}
			seen[key] = true
			boxes = append(boxes, info)
		}
	}
	return boxes, nil
}

type mdnsInstance struct {
	name   string
	txt    map[string]string
	target string
	port   uint16
}

// ParseResponse extracts the boxes described by an mDNS answer. from is
// used as the address when no A record accompanies the answer.
func ParseResponse(msg *dns.Msg, from net.IP) []*BoxInfo {
	records := append(append(append([]dns.RR{}, msg.Answer...), msg.Ns...), msg.Extra...)

	instances := make(map[string]*mdnsInstance)
	addrs := make(map[string]net.IP)
	var order []string

	instance := func(name string) *mdnsInstance {
		key := strings.ToLower(name)
		in, ok := instances[key]
		if !ok {
			in = &mdnsInstance{name: name, txt: make(map[string]string)}
			instances[key] = in
			order = append(order, key)
		}
		return in
	}

	for _, rr := range records {
		switch r := rr.(type) {
		case *dns.PTR:
			if strings.EqualFold(r.Hdr.Name, ServiceName) {
				instance(r.Ptr)
			}
		case *dns.SRV:
			in := instance(r.Hdr.Name)
			in.target = strings.ToLower(r.Target)
			in.port = r.Port
		case *dns.TXT:
			in := instance(r.Hdr.Name)
			for _, kv := range r.Txt {
				k, v, _ := strings.Cut(kv, "=")
				in.txt[k] = v
			}
		case *dns.A:
			addrs[strings.ToLower(r.Hdr.Name)] = r.A
		}
	}

	var boxes []*BoxInfo
	for _, key := range order {
		in := instances[key]
		if len(in.txt) == 0 || in.txt["api_version"] == "" {
			continue
		}
		info := &BoxInfo{
			UID:            in.txt["uid"],
			DeviceName:     instanceLabel(in.name),
			APIVersion:     in.txt["api_version"],
			APIBaseURL:     in.txt["api_base_url"],
			DeviceType:     in.txt["device_type"],
			APIDomain:      in.txt["api_domain"],
			HTTPSAvailable: in.txt["https_available"] == "1",
		}
		info.HTTPSPort, _ = strconv.Atoi(in.txt["https_port"])

		ip := addrs[in.target]
		if ip == nil {
			ip = from
		}
		if ip != nil {
			info.Host = ip.String()
			if in.port != 0 && in.port != 80 {
				info.Host = net.JoinHostPort(ip.String(), strconv.Itoa(int(in.port)))
			}
		}
		boxes = append(boxes, info)
	}
	return boxes
}

// instanceLabel returns the unescaped first label of a service instance
// name, e.g. "Freebox Server" for "Freebox\ Server._fbx-api._tcp.local.".
func instanceLabel(name string) string {
	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '\\' && i+1 < len(name) {
			i++
			sb.WriteByte(name[i])
			continue
		}
		if c == '.' {
			break
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
