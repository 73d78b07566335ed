package auth

import (
	fbxerrors "github.com/maksimkurb/fbx-go/src/internal/errors"
)

// Box error codes with a dedicated meaning.
const (
	BoxCodeAuthRequired       = "auth_required"
	BoxCodeInvalidSession     = "invalid_session"
	BoxCodeInvalidToken       = "invalid_token"
	BoxCodeInsufficientRights = "insufficient_rights"
	BoxCodePendingToken       = "pending_token"
	BoxCodeNoEnt              = "noent"
)

// IsSessionExpired reports whether a box error code means the session
// token is no longer valid.
func IsSessionExpired(boxCode string) bool {
	return boxCode == BoxCodeAuthRequired || boxCode == BoxCodeInvalidSession
}

// BoxError maps a failed envelope to the error taxonomy. The box code and
// message are kept verbatim.
func BoxError(boxCode, boxMsg string) error {
	switch boxCode {
	case BoxCodeInvalidToken, BoxCodeAuthRequired:
		return fbxerrors.FromBox(fbxerrors.ErrCodeAuthRequired, boxCode, boxMsg)
	case BoxCodeInvalidSession:
		return fbxerrors.FromBox(fbxerrors.ErrCodeInvalidSession, boxCode, boxMsg)
	case BoxCodeInsufficientRights:
		return fbxerrors.FromBox(fbxerrors.ErrCodeInsufficientPermissions, boxCode, boxMsg)
	case BoxCodePendingToken:
		return fbxerrors.FromBox(fbxerrors.ErrCodeRegistrationPending, boxCode, boxMsg)
	default:
		return fbxerrors.NewAPIError(boxCode, boxMsg)
	}
}
