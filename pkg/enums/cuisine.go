package enums

import "fmt"

// CuisineType maps to the cuisine_type enum in Postgres.
type CuisineType string

const (
	CuisineAsian   CuisineType = "asian"
	CuisineItalian CuisineType = "italian"
	CuisineDoner   CuisineType = "doner_kebab"
	CuisineBurger  CuisineType = "burger"
	CuisineGerman  CuisineType = "german"
	CuisineIndian  CuisineType = "indian"
	CuisineMexican CuisineType = "mexican"
	CuisinePizza   CuisineType = "pizza"
	CuisineOther   CuisineType = "other"
)

var validCuisineTypes = []CuisineType{
	CuisineAsian,
	CuisineItalian,
	CuisineDoner,
	CuisineBurger,
	CuisineGerman,
	CuisineIndian,
	CuisineMexican,
	CuisinePizza,
	CuisineOther,
}

// IsValid checks whether the given cuisine matches the canonical enum.
func (c CuisineType) IsValid() bool {
	for _, candidate := range validCuisineTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

func (c CuisineType) String() string {
	return string(c)
}

// ParseCuisineType converts raw strings into CuisineType.
func ParseCuisineType(value string) (CuisineType, error) {
	for _, candidate := range validCuisineTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cuisine type %q", value)
}
