package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	fbxerrors "github.com/maksimkurb/fbx-go/src/internal/errors"
	"github.com/maksimkurb/fbx-go/src/internal/log"
	"github.com/maksimkurb/fbx-go/src/internal/transport"
)

// Probe fetches /api_version from host. port 0 uses the scheme default.
func Probe(ctx context.Context, client transport.HTTPClient, host string, port uint16, https bool) (*BoxInfo, error) {
	scheme := "http"
	defaultPort := uint16(80)
	if https {
		scheme = "https"
		defaultPort = 443
	}
	addr := host
	if port != 0 && port != defaultPort {
		addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	} else if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		addr = "[" + host + "]"
	}

	url := fmt.Sprintf("%s://%s/api_version", scheme, addr)
	log.Debugf("[discovery] GET %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fbxerrors.NewInternalError("create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fbxerrors.NewTransportError("GET "+url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fbxerrors.NewTransportError(fmt.Sprintf("GET %s: HTTP %d", url, resp.StatusCode), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fbxerrors.NewTransportError("read api_version", err)
	}

	var info BoxInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fbxerrors.NewTransportError("decode api_version", err)
	}
	if info.APIVersion == "" {
		return nil, fbxerrors.NewAPIError("invalid_response", url+" has no api_version")
	}
	info.Host = addr
	return &info, nil
}
