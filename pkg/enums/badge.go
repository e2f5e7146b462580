package enums

import "fmt"

// BadgeRequirement maps to the requirement_type column on badges and decides
// which profile stat a badge threshold is compared against.
type BadgeRequirement string

const (
	BadgeRequirementXP          BadgeRequirement = "xp_points"
	BadgeRequirementDealsPosted BadgeRequirement = "deals_posted"
	BadgeRequirementMoneySaved  BadgeRequirement = "money_saved"
)

var validBadgeRequirements = []BadgeRequirement{
	BadgeRequirementXP,
	BadgeRequirementDealsPosted,
	BadgeRequirementMoneySaved,
}

// IsValid checks whether the requirement matches the canonical enum.
func (b BadgeRequirement) IsValid() bool {
	for _, candidate := range validBadgeRequirements {
		if candidate == b {
			return true
		}
	}
	return false
}

func (b BadgeRequirement) String() string {
	return string(b)
}

// ParseBadgeRequirement converts raw strings into BadgeRequirement.
func ParseBadgeRequirement(value string) (BadgeRequirement, error) {
	for _, candidate := range validBadgeRequirements {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid badge requirement %q", value)
}
