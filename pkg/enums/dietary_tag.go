package enums

import "fmt"

// DietaryTag is one entry of the dietary_tags array column on deals.
type DietaryTag string

const (
	DietaryTagVegan      DietaryTag = "vegan"
	DietaryTagVegetarian DietaryTag = "vegetarian"
	DietaryTagHalal      DietaryTag = "halal"
	DietaryTagGlutenFree DietaryTag = "gluten_free"
)

var validDietaryTags = []DietaryTag{
	DietaryTagVegan,
	DietaryTagVegetarian,
	DietaryTagHalal,
	DietaryTagGlutenFree,
}

// IsValid checks whether the given tag matches the canonical enum.
func (t DietaryTag) IsValid() bool {
	for _, candidate := range validDietaryTags {
		if candidate == t {
			return true
		}
	}
	return false
}

func (t DietaryTag) String() string {
	return string(t)
}

// ParseDietaryTags validates a raw tag list, rejecting the whole list on the
// first unknown entry.
func ParseDietaryTags(values []string) ([]DietaryTag, error) {
	tags := make([]DietaryTag, 0, len(values))
	for _, value := range values {
		tag := DietaryTag(value)
		if !tag.IsValid() {
			return nil, fmt.Errorf("invalid dietary tag %q", value)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
