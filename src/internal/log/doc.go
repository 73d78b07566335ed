// Package log provides simple leveled logging for fbx.
//
// Messages are written with a coloured level tag: DEBUG (only in verbose
// mode), INFO, WARN and ERROR. Errors go to stderr, everything else to
// stdout unless SetForceStdErr is enabled.
//
//	log.Infof("Connected to %s", box.DeviceName)
//	log.Debugf("Session token %s", log.Redact(token))
//
// Secrets such as app tokens, session tokens and derived passwords must
// only ever be logged through Redact.
//
// All functions are safe for concurrent use.
package log
