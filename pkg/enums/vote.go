package enums

import "fmt"

// VoteDirection maps to the vote_type enum in Postgres.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// IsValid checks whether the direction is one of the two allowed values.
func (v VoteDirection) IsValid() bool {
	return v == VoteUp || v == VoteDown
}

func (v VoteDirection) String() string {
	return string(v)
}

// Delta returns the signed contribution of the direction to a vote score:
// +1 for up, -1 for down.
func (v VoteDirection) Delta() int {
	switch v {
	case VoteUp:
		return 1
	case VoteDown:
		return -1
	default:
		return 0
	}
}

// ParseVoteDirection converts raw strings into VoteDirection.
func ParseVoteDirection(value string) (VoteDirection, error) {
	switch VoteDirection(value) {
	case VoteUp:
		return VoteUp, nil
	case VoteDown:
		return VoteDown, nil
	default:
		return "", fmt.Errorf("invalid vote direction %q", value)
	}
}
