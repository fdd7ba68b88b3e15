/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxPlayers        = 4
	MinOptions        = 2
	MaxOptions        = 50
	maxNameLength     = 30
	maxOptionLength   = 30
	maxQuestionLength = 140
	maxNotesLength    = 1000
)

func validateRoomName(name string) (string, error) {
	return validateText("room name", name, maxNameLength)
}

func validateUsername(name string) (string, error) {
	return validateText("name", name, maxNameLength)
}

func validateOptionText(text string) (string, error) {
	return validateText("option", text, maxOptionLength)
}

func validateOptions(texts []string) ([]string, error) {
	if len(texts) < MinOptions || len(texts) > MaxOptions {
		return nil, validationf("a room needs between %d and %d options, got %d", MinOptions, MaxOptions, len(texts))
	}

	out := make([]string, 0, len(texts))
	for _, text := range texts {
		clean, err := validateOptionText(text)
		if err != nil {
			return nil, err
		}
		out = append(out, clean)
	}

	return out, nil
}

func validateQuestion(text string) (string, error) {
	trimmed := normalizeText(text)
	if utf8.RuneCountInString(trimmed) > maxQuestionLength {
		return "", validationf("question must be %d characters or fewer", maxQuestionLength)
	}
	if !isPrintable(trimmed) {
		return "", validationf("question contains unsupported characters")
	}
	return trimmed, nil
}

func validateNotes(text string) (string, error) {
	if utf8.RuneCountInString(text) > maxNotesLength {
		return "", validationf("notes must be %d characters or fewer", maxNotesLength)
	}
	return text, nil
}

func validateText(label, text string, maxLen int) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", validationf("%s is required", label)
	}
	if utf8.RuneCountInString(trimmed) > maxLen {
		return "", validationf("%s must be %d characters or fewer", label, maxLen)
	}
	if !isPrintable(trimmed) {
		return "", validationf("%s contains unsupported characters", label)
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func isPrintable(text string) bool {
	for _, r := range text {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// NormalizeCode upper-cases a room code so manual entry is case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
