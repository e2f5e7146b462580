package enums

import "fmt"

// DealType maps to the deal_type enum in Postgres.
type DealType string

const (
	DealTypeOpening    DealType = "opening_special"
	DealTypeLunch      DealType = "lunch_special"
	DealTypeHappyHour  DealType = "happy_hour"
	DealTypeDaily      DealType = "daily_special"
	DealTypeLastMinute DealType = "last_minute"
)

var validDealTypes = []DealType{
	DealTypeOpening,
	DealTypeLunch,
	DealTypeHappyHour,
	DealTypeDaily,
	DealTypeLastMinute,
}

// IsValid checks whether the given type matches the canonical enum.
func (d DealType) IsValid() bool {
	for _, candidate := range validDealTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

func (d DealType) String() string {
	return string(d)
}

// ParseDealType converts raw strings into DealType.
func ParseDealType(value string) (DealType, error) {
	for _, candidate := range validDealTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deal type %q", value)
}
