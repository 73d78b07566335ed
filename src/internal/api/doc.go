// Package api serves a local REST gateway over the box session.
//
// The gateway lets tools on the local network read the box state without
// holding an app token themselves. Every request reuses the session of the
// process; expired sessions are reopened transparently.
//
// # Response Format
//
// All successful responses wrap data in a "data" field:
//
//	{
//	  "data": { /* response payload */ }
//	}
//
// Error responses use the following format:
//
//	{
//	  "error": {
//	    "code": "auth_required",
//	    "message": "Human-readable error message",
//	    "details": { "box_code": "invalid_token" }
//	  }
//	}
package api
