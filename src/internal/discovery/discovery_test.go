package discovery

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/vishvananda/netlink"

	fbxerrors "github.com/maksimkurb/fbx-go/src/internal/errors"
)

const apiVersionBody = `{
	"uid": "23b86ec8091013d668829fe12791fdab",
	"device_name": "Freebox Server",
	"api_version": "8.0",
	"api_base_url": "/api/",
	"device_type": "FreeboxServer1,2",
	"api_domain": "abcdefgh.fbxos.fr",
	"https_available": true,
	"https_port": 3615
}`

func newAPIVersionServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api_version" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, apiVersionBody)
	}))
}

func TestBaseURL(t *testing.T) {
	info := &BoxInfo{
		APIVersion:     "8.2",
		APIBaseURL:     "/api/",
		APIDomain:      "abcdefgh.fbxos.fr",
		HTTPSAvailable: true,
		HTTPSPort:      3615,
		Host:           "192.168.1.254",
	}

	tests := []struct {
		name    string
		info    *BoxInfo
		opts    URLOptions
		want    string
		wantErr bool
	}{
		{name: "https", info: info, opts: URLOptions{HTTPS: true}, want: "https://abcdefgh.fbxos.fr:3615/api/v8/"},
		{name: "http", info: info, opts: URLOptions{}, want: "http://192.168.1.254/api/v8/"},
		{name: "domain override", info: info, opts: URLOptions{HTTPS: true, APIDomain: "box.lan"}, want: "https://box.lan:3615/api/v8/"},
		{name: "version override", info: info, opts: URLOptions{APIVersion: "v6"}, want: "http://192.168.1.254/api/v6/"},
		{name: "https unavailable", info: &BoxInfo{APIVersion: "8.0", Host: "h"}, opts: URLOptions{HTTPS: true}, wantErr: true},
		{name: "bad version", info: &BoxInfo{APIVersion: "latest", Host: "h"}, wantErr: true},
		{name: "base path without slashes", info: &BoxInfo{APIVersion: "4.0", APIBaseURL: "api", Host: "h:8080"}, want: "http://h:8080/api/v4/"},
		{name: "https falls back to host", info: &BoxInfo{APIVersion: "8.0", HTTPSAvailable: true, Host: "10.0.0.1:80"}, opts: URLOptions{HTTPS: true}, want: "https://10.0.0.1:443/api/v8/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.info.BaseURL(tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("BaseURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("BaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProbe(t *testing.T) {
	server := newAPIVersionServer(t)
	defer server.Close()

	host, portStr, _ := net.SplitHostPort(strings.TrimPrefix(server.URL, "http://"))
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatal(err)
	}

	info, err := Probe(context.Background(), server.Client(), host, uint16(port), false)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.APIDomain != "abcdefgh.fbxos.fr" || info.HTTPSPort != 3615 || !info.HTTPSAvailable {
		t.Errorf("unexpected info %+v", info)
	}
	if info.Host != net.JoinHostPort(host, portStr) {
		t.Errorf("Host = %q", info.Host)
	}
	if major, _ := info.MajorVersion(); major != 8 {
		t.Errorf("MajorVersion() = %d", major)
	}
}

func TestProbe_NotABox(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"hello": "world"}`)
	}))
	defer server.Close()

	_, err := Probe(context.Background(), server.Client(), strings.TrimPrefix(server.URL, "http://"), 0, false)
	if !errors.Is(err, fbxerrors.ErrAPI) {
		t.Fatalf("expected API_ERROR, got %v", err)
	}
}

func mdnsAnswer() *dns.Msg {
	msg := new(dns.Msg)
	msg.Response = true
	hdr := func(name string, rrtype uint16) dns.RR_Header {
		return dns.RR_Header{Name: name, Rrtype: rrtype, Class: dns.ClassINET, Ttl: 120}
	}
	instance := "Freebox\\ Server." + ServiceName
	msg.Answer = []dns.RR{
		&dns.PTR{Hdr: hdr(ServiceName, dns.TypePTR), Ptr: instance},
	}
	msg.Extra = []dns.RR{
		&dns.SRV{Hdr: hdr(instance, dns.TypeSRV), Target: "Freebox-Server.local.", Port: 80},
		&dns.TXT{Hdr: hdr(instance, dns.TypeTXT), Txt: []string{
			"api_version=8.0",
			"device_type=FreeboxServer1,2",
			"api_base_url=/api/",
			"uid=23b86ec8091013d668829fe12791fdab",
			"api_domain=abcdefgh.fbxos.fr",
			"https_available=1",
			"https_port=3615",
		}},
		&dns.A{Hdr: hdr("Freebox-Server.local.", dns.TypeA), A: net.ParseIP("192.168.1.254").To4()},
	}
	return msg
}

func TestParseResponse(t *testing.T) {
	boxes := ParseResponse(mdnsAnswer(), net.ParseIP("10.0.0.1"))
	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d", len(boxes))
	}
	b := boxes[0]
	if b.Host != "192.168.1.254" {
		t.Errorf("Host = %q", b.Host)
	}
	if b.DeviceName != "Freebox Server" {
		t.Errorf("DeviceName = %q", b.DeviceName)
	}
	if !b.HTTPSAvailable || b.HTTPSPort != 3615 || b.APIDomain != "abcdefgh.fbxos.fr" {
		t.Errorf("unexpected box %+v", b)
	}

	// Answers for other services are ignored.
	other := new(dns.Msg)
	other.Answer = []dns.RR{&dns.PTR{
		Hdr: dns.RR_Header{Name: "_http._tcp.local.", Rrtype: dns.TypePTR, Class: dns.ClassINET},
		Ptr: "printer._http._tcp.local.",
	}}
	if boxes := ParseResponse(other, nil); len(boxes) != 0 {
		t.Errorf("expected no box, got %+v", boxes)
	}
}

func TestBrowse(t *testing.T) {
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen on UDP: %v", err)
	}
	defer conn.Close()

	go func() {
		buf := make([]byte, 65535)
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			return
		}
		query := new(dns.Msg)
		if err := query.Unpack(buf[:n]); err != nil || len(query.Question) == 0 || query.Question[0].Name != ServiceName {
			return
		}
		reply := mdnsAnswer()
		reply.Id = query.Id
		packed, err := reply.Pack()
		if err != nil {
			return
		}
		_, _ = conn.WriteTo(packed, from)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	boxes, err := Browse(ctx, conn.LocalAddr().String())
	if err != nil {
		t.Fatalf("Browse() error = %v", err)
	}
	if len(boxes) != 1 || boxes[0].UID != "23b86ec8091013d668829fe12791fdab" {
		t.Errorf("Browse() = %+v", boxes)
	}
}

func TestDefaultGateway(t *testing.T) {
	_, lan, _ := net.ParseCIDR("192.168.1.0/24")
	_, any4, _ := net.ParseCIDR("0.0.0.0/0")
	routes := []netlink.Route{
		{Dst: lan},
		{Dst: lan, Gw: net.ParseIP("192.168.1.2")},
		{Dst: any4, Gw: net.ParseIP("10.8.0.1"), Priority: 600},
		{Gw: net.ParseIP("192.168.1.254"), Priority: 100},
	}
	if gw := defaultGateway(routes); !gw.Equal(net.ParseIP("192.168.1.254")) {
		t.Errorf("defaultGateway() = %v", gw)
	}
	if gw := defaultGateway(routes[:2]); gw != nil {
		t.Errorf("expected no gateway, got %v", gw)
	}
}

func TestDiscover_FallsBackToGateway(t *testing.T) {
	server := newAPIVersionServer(t)
	defer server.Close()

	dead := httptest.NewServer(http.NotFoundHandler())
	deadHost := strings.TrimPrefix(dead.URL, "http://")
	dead.Close()

	info, err := Discover(context.Background(), Options{
		Host:    deadHost,
		Timeout: time.Second,
		Client:  server.Client(),
		Gateway: func() (string, error) {
			return strings.TrimPrefix(server.URL, "http://"), nil
		},
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if info.DeviceName != "Freebox Server" {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestDiscover_NothingFound(t *testing.T) {
	_, err := Discover(context.Background(), Options{
		Timeout: 50 * time.Millisecond,
		Client:  http.DefaultClient,
		Gateway: func() (string, error) { return "", errors.New("no route") },
	})
	if !errors.Is(err, fbxerrors.ErrTransport) {
		t.Fatalf("expected TRANSPORT_ERROR, got %v", err)
	}
}
