package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	TitleMaxLength       = 200
	DescriptionMaxLength = 4000
	NoteMaxLength        = 4000
)

func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return errors.New("title is required")
	}
	if utf8.RuneCountInString(trimmed) > TitleMaxLength {
		return fmt.Errorf("title is too long (max %d characters)", TitleMaxLength)
	}
	return nil
}

func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > DescriptionMaxLength {
		return fmt.Errorf("description is too long (max %d characters)", DescriptionMaxLength)
	}
	return nil
}

func ValidateNote(note string) error {
	trimmed := strings.TrimSpace(note)
	if trimmed == "" {
		return errors.New("note is required")
	}
	if utf8.RuneCountInString(trimmed) > NoteMaxLength {
		return fmt.Errorf("note is too long (max %d characters)", NoteMaxLength)
	}
	return nil
}

// ValidateProgress checks a completion percentage; both bounds are inclusive.
func ValidateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100, got %d", progress)
	}
	return nil
}
