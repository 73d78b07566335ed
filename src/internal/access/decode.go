package access

import (
	"encoding/json"

	fbxerrors "github.com/maksimkurb/fbx-go/src/internal/errors"
)

// Decode unmarshals a call result into T. It accepts the two return
// values of a Requester call directly:
//
//	cfg, err := access.Decode[SystemConfig](r.Get(ctx, "system/"))
//
// An empty or null result yields the zero T.
func Decode[T any](raw json.RawMessage, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fbxerrors.NewAPIError("invalid_response", "decode result: "+err.Error())
	}
	return out, nil
}

// Discard drops a call result, keeping only its error. Used by endpoints
// that return nothing.
func Discard(_ json.RawMessage, err error) error {
	return err
}
