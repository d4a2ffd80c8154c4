package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLength = 120
	MaxNameLength  = 80
	MaxLabelLength = 120
)

// Calendar-day pattern only; 2025-02-31 passes
var dateStartPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", validationError("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", validationError("title must be at most %d characters", MaxTitleLength)
	}
	return title, nil
}

func normalizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", validationError("display_name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", validationError("display_name must be at most %d characters", MaxNameLength)
	}
	return name, nil
}

func validateDateStart(dateStart string) error {
	if !dateStartPattern.MatchString(dateStart) {
		return validationError("date_start must be in YYYY-MM-DD format")
	}
	return nil
}

// normalizeLabel trims the label; blank means no label
func normalizeLabel(label *string) (*string, error) {
	if label == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*label)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > MaxLabelLength {
		return nil, validationError("label must be at most %d characters", MaxLabelLength)
	}
	return &trimmed, nil
}
