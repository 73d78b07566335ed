// Package discovery finds the box on the local network and derives the
// API base URL from its self-description.
//
// The box answers GET /api_version without authentication:
//
//	{"uid": "...", "device_name": "Freebox Server", "api_version": "8.0",
//	 "api_base_url": "/api/", "api_domain": "abcdefgh.fbxos.fr",
//	 "https_available": true, "https_port": 3615, "device_type": "..."}
//
// When the configured host does not answer, the box is looked up with an
// mDNS query for _fbx-api._tcp.local. and, as a last resort, at the
// default gateway address.
package discovery
