// Package transport sends raw requests to the box HTTP API.
//
// A Transport owns the base URL of the API (for example
// https://abcdefgh.fbxos.fr:12345/api/v8/), the HTTP client with its TLS
// setup, and the decoding of the JSON envelope every API call answers
// with:
//
//	{"success": true, "result": {...}}
//	{"success": false, "error_code": "auth_required", "msg": "..."}
//
// It does not know about sessions beyond attaching a session token to
// the X-Fbx-App-Auth header when given one, and it never retries: a
// network, TLS or timeout failure is returned as a TRANSPORT_ERROR and
// the caller decides what to do with it.
//
// # TLS
//
// The box presents a certificate issued by the vendor's private root.
// Three trust modes are supported, in order of preference:
//
//   - CAFile / CAPEM: verify the chain against the vendor root bundle
//   - Fingerprint: pin the SHA-256 of the leaf certificate
//   - InsecureSkipVerify: accept anything (debugging only)
//
// With none of them the system roots are used, which works when the box
// is reached through a publicly trusted name.
package transport
