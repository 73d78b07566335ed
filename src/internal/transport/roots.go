package transport

import (
	"bytes"
	_ "embed"
)

//go:embed roots/freebox_ecc_root_ca.pem
var vendorRoots []byte

// VendorRoots returns the PEM bundle of the box vendor's root
// certificates. The local API endpoint is served under this chain.
func VendorRoots() []byte {
	return bytes.Clone(vendorRoots)
}
