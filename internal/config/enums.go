package config

import (
	"fmt"
	"strings"
)

// Method selects how files are fingerprinted.
type Method int

const (
	// MethodHash - digest of the full content
	MethodHash Method = iota
	// MethodSize - byte length only; same-size files are duplicates
	MethodSize
	// MethodName - base filename only; same-name files are duplicates
	MethodName
)

// String returns the string representation of Method
func (m Method) String() string {
	switch m {
	case MethodHash:
		return "hash"
	case MethodSize:
		return "size"
	case MethodName:
		return "name"
	default:
		return "unknown"
	}
}

// ParseMethod parses a string into a Method
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hash", "content":
		return MethodHash, nil
	case "size":
		return MethodSize, nil
	case "name", "filename":
		return MethodName, nil
	default:
		return MethodHash, fmt.Errorf("%w: method %q (valid: hash, size, name)", ErrInvalidValue, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg and yaml
func (m *Method) UnmarshalText(text []byte) error {
	parsed, err := ParseMethod(string(text))
	if err != nil {
		return err
	}

	*m = parsed

	return nil
}

// KeepPolicy selects which member of a duplicate group survives.
type KeepPolicy int

const (
	// KeepFirst - first member in discovery order
	KeepFirst KeepPolicy = iota
	// KeepNewest - latest modification time
	KeepNewest
	// KeepOldest - earliest modification time
	KeepOldest
	// KeepLargest - largest size
	KeepLargest
	// KeepSmallest - smallest size
	KeepSmallest
	// KeepInteractive - ask the operator for every group
	KeepInteractive
)

// String returns the string representation of KeepPolicy
func (k KeepPolicy) String() string {
	switch k {
	case KeepFirst:
		return "first"
	case KeepNewest:
		return "newest"
	case KeepOldest:
		return "oldest"
	case KeepLargest:
		return "largest"
	case KeepSmallest:
		return "smallest"
	case KeepInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// ParseKeepPolicy parses a string into a KeepPolicy
func ParseKeepPolicy(s string) (KeepPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return KeepFirst, nil
	case "newest":
		return KeepNewest, nil
	case "oldest":
		return KeepOldest, nil
	case "largest":
		return KeepLargest, nil
	case "smallest":
		return KeepSmallest, nil
	case "interactive", "ask":
		return KeepInteractive, nil
	default:
		return KeepFirst, fmt.Errorf(
			"%w: keep policy %q (valid: first, newest, oldest, largest, smallest, interactive)", ErrInvalidValue, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg and yaml
func (k *KeepPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseKeepPolicy(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}

// Action is what happens to the non-kept members of a group.
type Action int

const (
	// ActionNone - report only
	ActionNone Action = iota
	// ActionRemove - delete duplicates
	ActionRemove
	// ActionHardlink - replace duplicates with hard links to the kept file
	ActionHardlink
)

// String returns the string representation of Action
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionRemove:
		return "remove"
	case ActionHardlink:
		return "hardlink"
	default:
		return "unknown"
	}
}

// ParseAction parses a string into an Action
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "report":
		return ActionNone, nil
	case "remove", "delete":
		return ActionRemove, nil
	case "hardlink", "link":
		return ActionHardlink, nil
	default:
		return ActionNone, fmt.Errorf("%w: action %q (valid: none, remove, hardlink)", ErrInvalidValue, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg and yaml
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}

	*a = parsed

	return nil
}

// Format selects the report encoding.
type Format int

const (
	// FormatText - human readable listing
	FormatText Format = iota
	// FormatJSON - one object per group
	FormatJSON
	// FormatCSV - one row per group member
	FormatCSV
)

// String returns the string representation of Format
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// ParseFormat parses a string into a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return FormatText, fmt.Errorf("%w: format %q (valid: text, json, csv)", ErrInvalidValue, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg and yaml
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}

	*f = parsed

	return nil
}
