package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPolicy = errors.New("unknown notification policy")

// Policy controls which due tasks produce a notification.
type Policy string

const (
	PolicyAll       Policy = "all"
	PolicyImportant Policy = "important"
	PolicyNone      Policy = "none"
)

// ParsePolicy is case-insensitive; an empty value is the application default.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyAll, nil
	case PolicyAll, PolicyImportant, PolicyNone:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

func (p *Policy) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownPolicy, b)
	}
	v, err := ParsePolicy(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

type Settings struct {
	Notifications Policy `json:"notifications"`
}

func DefaultSettings() Settings {
	return Settings{Notifications: PolicyAll}
}

// DecodeSettings reads the settings document; fields this package does not
// model are ignored.
func DecodeSettings(b []byte) (Settings, error) {
	s := DefaultSettings()
	if len(strings.TrimSpace(string(b))) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if s.Notifications == "" {
		s.Notifications = PolicyAll
	}
	return s, nil
}
