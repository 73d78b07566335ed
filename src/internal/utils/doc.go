// Package utils provides small helpers shared across fbx.
//
//   - Path utilities: resolve paths relative to the configuration
//     directory and expand "~"
//   - File utilities: atomic replace and close-with-warning
//
// Path resolution:
//
//	absPath := utils.GetAbsolutePath("state/app_auth", "/etc/fbx")
//	// Returns: /etc/fbx/state/app_auth
package utils
