package types

import (
	"errors"
	"strings"
)

// ErrPreconditionViolation marks caller misuse, such as beginning a stroke
// while another one is active or starting a session twice.
var ErrPreconditionViolation = errors.New("precondition violation")

// Class is a sketch label the classifier recognizes
type Class string

// Known classes
const (
	Laugh     Class = "laugh"
	Smile     Class = "smile"
	Heart     Class = "heart"
	Checkmark Class = "checkmark"
	Croissant Class = "croissant"
	Sun       Class = "sun"
	Cloud     Class = "cloud"
)

// AllClasses returns every label in display order
func AllClasses() []Class {
	return []Class{Smile, Laugh, Sun, Checkmark, Croissant, Heart, Cloud}
}

// ParseClass matches a label case-insensitively
func ParseClass(s string) (Class, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllClasses() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Emoji returns the emoji drawn for the class
func (c Class) Emoji() string {
	switch c {
	case Laugh:
		return "😂"
	case Smile:
		return "😊"
	case Heart:
		return "❤️"
	case Checkmark:
		return "✔️"
	case Croissant:
		return "🥐"
	case Sun:
		return "☀️"
	case Cloud:
		return "☁️"
	}
	return ""
}

// NoPrediction labels a sketch the classifier could not recognize
const NoPrediction = "none"

// Prediction is the classifier's answer for one sketch
type Prediction struct {
	Label       string             `json:"label"`
	Confidences map[string]float64 `json:"confidences"`
	Description string             `json:"description,omitempty"`
}

// Confidence returns the probability assigned to the predicted label
func (p Prediction) Confidence() float64 {
	return p.Confidences[p.Label]
}

// ExportOptions controls how sketches are written out
type ExportOptions struct {
	Width    int
	Height   int
	Format   string
	Quality  int
	Lossless bool
}
