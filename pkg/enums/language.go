package enums

import "fmt"

// Language is the profile language preference.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageGerman  Language = "de"
)

// IsValid checks whether the language is supported.
func (l Language) IsValid() bool {
	return l == LanguageEnglish || l == LanguageGerman
}

func (l Language) String() string {
	return string(l)
}

// ParseLanguage converts raw strings into Language.
func ParseLanguage(value string) (Language, error) {
	switch Language(value) {
	case LanguageEnglish:
		return LanguageEnglish, nil
	case LanguageGerman:
		return LanguageGerman, nil
	default:
		return "", fmt.Errorf("invalid language %q", value)
	}
}
