package textback

import (
	"errors"
	"time"
)

// Platform is the chat platform a message was imported from
type Platform string

const (
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformMessenger Platform = "MESSENGER"
)

// Variant names a question archetype
type Variant string

const (
	VariantContinue Variant = "continue"
	VariantDuration Variant = "duration"
	VariantNext     Variant = "next"
	VariantPlatform Variant = "platform"
	VariantReact    Variant = "react"
	VariantWhen     Variant = "when"
	VariantWho      Variant = "who"
)

// AllVariants lists every variant the engine knows about, sorted by name
var AllVariants = []Variant{
	VariantContinue,
	VariantDuration,
	VariantNext,
	VariantPlatform,
	VariantReact,
	VariantWhen,
	VariantWho,
}

// ParseVariant returns the variant with the given name
func ParseVariant(name string) (Variant, error) {
	for _, v := range AllVariants {
		if string(v) == name {
			return v, nil
		}
	}
	return "", ErrUnknownVariant
}

var (
	ErrUnknownVariant   = errors.New("unknown question variant")
	ErrNoVariants       = errors.New("no question variants are enabled")
	ErrRetriesExhausted = errors.New("question generation retries exhausted")
)

// Reaction is a single reaction attached to a message
type Reaction struct {
	Reaction    string `json:"reaction"`
	Participant string `json:"participant"`
}

// Message is an imported chat message. A message always has text or at least one media.
type Message struct {
	ID          int64      `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	Participant string     `json:"participant"`
	Platform    Platform   `json:"platform"`
	Text        string     `json:"text"`
	Words       int        `json:"words"`
	Medias      []string   `json:"medias,omitempty"`
	Reactions   []Reaction `json:"reactions,omitempty"`
}

// QuestionMessage is the display form of a message inside a question
type QuestionMessage struct {
	ID          int64     `json:"id"`
	Content     string    `json:"content"`
	Date        time.Time `json:"date"`
	IsMedia     bool      `json:"is_media"`
	Participant string    `json:"participant"`
	Platform    Platform  `json:"platform"`
	Reaction    string    `json:"reaction"`
}

// Question is a generated multiple choice question about the corpus
type Question struct {
	Seed      string            `json:"seed"`
	Variant   Variant           `json:"variant"`
	Answer    string            `json:"answer"`
	Choices   []string          `json:"choices"`
	Messages  []QuestionMessage `json:"messages"`
	Recipient string            `json:"recipient,omitempty"`
}

// convertMessage converts a stored message into its display form. Only the first media and
// the first reaction are shown.
func convertMessage(m Message) QuestionMessage {
	qm := QuestionMessage{
		ID:          m.ID,
		Content:     m.Text,
		Date:        m.Timestamp,
		IsMedia:     len(m.Medias) > 0,
		Participant: m.Participant,
		Platform:    m.Platform,
	}
	if m.Text == "" && len(m.Medias) > 0 {
		qm.Content = m.Medias[0]
	}
	if len(m.Reactions) > 0 {
		qm.Reaction = m.Reactions[0].Reaction
	}
	return qm
}

func convertMessages(window []Message) []QuestionMessage {
	out := make([]QuestionMessage, len(window))
	for i, m := range window {
		out[i] = convertMessage(m)
	}
	return out
}
