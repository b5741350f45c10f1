package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrIdentityCorrupt marks a persisted identity record that could not be decoded.
// It is only ever passed to a [CorruptionHook]; [Store.Read] never returns it.
var ErrIdentityCorrupt = errors.New("persisted identity corrupt")

// EncodeIdentity serializes id into the "task_user" wire form.
func EncodeIdentity(id *Identity) (string, error) {
	if id == nil {
		return "", errors.New("nil identity")
	}
	data, err := json.Marshal(id)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeIdentity parses a "task_user" value. JSON null, an empty object and any
// syntax or type error are reported as [ErrIdentityCorrupt].
func DecodeIdentity(raw string) (*Identity, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty record", ErrIdentityCorrupt)
	}

	var id *Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityCorrupt, err)
	}
	if id == nil || (id.ID == 0 && id.Email == "" && id.Name == "") {
		return nil, fmt.Errorf("%w: empty record", ErrIdentityCorrupt)
	}
	return id, nil
}
