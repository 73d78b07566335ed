// Package credentials persists the app token obtained during registration.
//
// The app token is the long-lived secret that lets the application open
// sessions without asking the user again. It is stored together with the
// track id of the registration and the identity it was issued to:
//
//	{
//	  "app_token": "dyNYgfK0Ya6FWGqq...",
//	  "track_id": 42,
//	  "app_desc": {"app_id": "fr.example.app", "app_name": "...", ...}
//	}
//
// FileStore keeps that record in a 0600 file written by atomic replace.
// A missing or unreadable file is reported as "no credentials", never as
// an error, so a fresh install and a corrupted install behave the same.
package credentials
