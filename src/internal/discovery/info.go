package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	fbxerrors "github.com/maksimkurb/fbx-go/src/internal/errors"
)

// BoxInfo is the self-description returned by /api_version.
type BoxInfo struct {
	UID            string `json:"uid"`
	DeviceName     string `json:"device_name"`
	APIVersion     string `json:"api_version"`
	APIBaseURL     string `json:"api_base_url"`
	DeviceType     string `json:"device_type"`
	APIDomain      string `json:"api_domain"`
	HTTPSAvailable bool   `json:"https_available"`
	HTTPSPort      int    `json:"https_port"`

	// Host is the address the description was fetched from, with port
	// when it is not the scheme default.
	Host string `json:"-"`
}

// MajorVersion returns the major API version, e.g. 8 for "8.0".
func (b *BoxInfo) MajorVersion() (int, error) {
	major, _, _ := strings.Cut(strings.TrimPrefix(b.APIVersion, "v"), ".")
	n, err := strconv.Atoi(major)
	if err != nil || n <= 0 {
		return 0, fbxerrors.NewAPIError("invalid_response", fmt.Sprintf("unexpected api_version %q", b.APIVersion))
	}
	return n, nil
}

// URLOptions adjusts BaseURL.
type URLOptions struct {
	// HTTPS selects the remote TLS endpoint announced by the box.
	HTTPS bool
	// APIDomain replaces the announced api_domain.
	APIDomain string
	// APIVersion forces a version such as "v8".
	APIVersion string
}

// BaseURL derives the versioned API root:
//
//	https://<api_domain>:<https_port><api_base_url>v<major>/
//	http://<host><api_base_url>v<major>/
func (b *BoxInfo) BaseURL(opts URLOptions) (string, error) {
	version := opts.APIVersion
	if version == "" {
		major, err := b.MajorVersion()
		if err != nil {
			return "", err
		}
		version = "v" + strconv.Itoa(major)
	}

	basePath := b.APIBaseURL
	if basePath == "" {
		basePath = "/api/"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}

	if !opts.HTTPS {
		if b.Host == "" {
			return "", fbxerrors.NewConfigError("box host is unknown", nil)
		}
		return fmt.Sprintf("http://%s%s%s/", b.Host, basePath, version), nil
	}

	if !b.HTTPSAvailable {
		return "", fbxerrors.NewConfigError("box does not offer HTTPS access, set box.https = false", nil)
	}
	domain := opts.APIDomain
	if domain == "" {
		domain = b.APIDomain
	}
	if domain == "" {
		domain, _, _ = strings.Cut(b.Host, ":")
	}
	if domain == "" {
		return "", fbxerrors.NewConfigError("box api_domain is unknown", nil)
	}
	port := b.HTTPSPort
	if port == 0 {
		port = 443
	}
	return fmt.Sprintf("https://%s%s%s/", net.JoinHostPort(domain, strconv.Itoa(port)), basePath, version), nil
}
