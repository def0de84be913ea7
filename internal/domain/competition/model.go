package competition

import (
	"fmt"
	"strings"
)

// Format selects the numbering scheme used when grouping raw matches
// into gameweeks.
type Format string

const (
	// FormatLeague is a flat round-robin competition: one gameweek per
	// provider matchday.
	FormatLeague Format = "league"
	// FormatCup is a multi-stage knockout competition: gameweek numbers
	// are offset by the stages played before them.
	FormatCup Format = "cup"
)

func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatLeague:
		return FormatLeague, nil
	case FormatCup:
		return FormatCup, nil
	default:
		return "", fmt.Errorf("unknown competition format %q", value)
	}
}

// Competition is one synced tournament, identified by the provider's
// competition code (e.g. "PL", "CL").
type Competition struct {
	ID     string
	Name   string
	Format Format
}

func (c Competition) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("competition id is required")
	}
	if c.Format != FormatLeague && c.Format != FormatCup {
		return fmt.Errorf("competition %s has invalid format %q", c.ID, c.Format)
	}
	return nil
}
