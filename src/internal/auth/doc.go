// Package auth implements the box authentication protocol.
//
// Registration is done once per installation. The application asks the
// box for an app token, the user confirms on the box front panel, and the
// application polls the request until it is granted:
//
//	POST login/authorize/            -> {app_token, track_id}
//	GET  login/authorize/{track_id}  -> {status: pending|granted|denied|timeout|unknown}
//
// The app token is saved before Register returns, so a crash while the
// user walks to the box does not lose it.
//
// Sessions are opened by challenge-response. The password sent to the box
// is the hex HMAC-SHA1 of a fresh challenge keyed by the app token, so the
// app token itself never travels after registration:
//
//	GET  login/          -> {logged_in, challenge}
//	POST login/session/  {app_id, password} -> {session_token, permissions}
package auth
