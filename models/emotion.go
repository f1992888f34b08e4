package models

import (
	"fmt"
	"strings"
)

// Emotion is the mood tag attached to check-ins and diary entries.
type Emotion string

const (
	EmotionHappy    Emotion = "happy"
	EmotionSad      Emotion = "sad"
	EmotionAnxious  Emotion = "anxious"
	EmotionCalm     Emotion = "calm"
	EmotionStressed Emotion = "stressed"
)

// Emotions lists the recognized tags in display order.
var Emotions = []Emotion{EmotionHappy, EmotionSad, EmotionAnxious, EmotionCalm, EmotionStressed}

// ParseEmotion returns ErrInvalidInput for unknown tags.
func ParseEmotion(s string) (Emotion, error) {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", fmt.Errorf("%w: unknown emotion %q", ErrInvalidInput, s)
	}
	return e, nil
}

// Valid reports whether e is one of the recognized tags.
func (e Emotion) Valid() bool {
	for _, known := range Emotions {
		if e == known {
			return true
		}
	}
	return false
}
