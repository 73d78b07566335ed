package transport

import (
	"encoding/json"
	"fmt"

	fbxerrors "github.com/maksimkurb/fbx-go/src/internal/errors"
)

// AuthHeader carries the session token on authenticated calls.
const AuthHeader = "X-Fbx-App-Auth"

// Envelope is the wrapper present on every API response.
type Envelope struct {
	Success   bool            `json:"success"`
	Result    json.RawMessage `json:"result,omitempty"`
	ErrorCode string          `json:"error_code,omitempty"`
	Msg       string          `json:"msg,omitempty"`
}

// decodeEnvelope parses body and enforces that a failed envelope always
// names its error_code.
func decodeEnvelope(body []byte, status int) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fbxerrors.NewTransportError(fmt.Sprintf("decode response (HTTP %d)", status), err)
	}
	if !env.Success && env.ErrorCode == "" {
		return nil, fbxerrors.NewAPIError("invalid_response", fmt.Sprintf("failed response without error_code (HTTP %d)", status))
	}
	return &env, nil
}

// Decode unmarshals the result into dest. An empty result leaves dest untouched.
func (e *Envelope) Decode(dest any) error {
	if dest == nil || len(e.Result) == 0 || string(e.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Result, dest); err != nil {
		return fbxerrors.NewAPIError("invalid_response", fmt.Sprintf("decode result: %v", err))
	}
	return nil
}
