package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BrokenStatus tells whether a map's maximum points are trustworthy
type BrokenStatus int

const (
	Unknown BrokenStatus = iota
	NotBroken
	Broken
)

// Numeric codes used in the exported JSON
var brokenCodes = map[BrokenStatus]int{
	Broken:    0,
	NotBroken: 1,
	Unknown:   2,
}

func (s BrokenStatus) String() string {
	switch s {
	case Broken:
		return "Broken"
	case NotBroken:
		return "Not Broken"
	default:
		return "Idk"
	}
}

// ParseBrokenStatus parses a catalogue token
func ParseBrokenStatus(token string) (BrokenStatus, error) {
	switch strings.ReplaceAll(strings.TrimSpace(token), "_", " ") {
	case "Broken":
		return Broken, nil
	case "Not Broken":
		return NotBroken, nil
	case "Idk":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("unrecognized broken status %q", token)
}

func (s BrokenStatus) MarshalJSON() ([]byte, error) {
	code, ok := brokenCodes[s]
	if !ok {
		return nil, fmt.Errorf("invalid broken status %d", int(s))
	}
	return json.Marshal(code)
}

func (s *BrokenStatus) UnmarshalJSON(data []byte) error {
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	for status, c := range brokenCodes {
		if c == code {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("invalid broken status code %d", code)
}
