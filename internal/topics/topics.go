package topics

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

type Topic struct {
	Text    string `json:"text" validate:"required"`
	Enabled bool   `json:"enabled"`
}

// UnmarshalJSON also accepts the legacy forms: a bare string, which is an
// enabled topic, and an object keyed by "topic" instead of "text".
func (t *Topic) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*t = Topic{Text: text, Enabled: true}
		return nil
	}

	var raw struct {
		Text    *string `json:"text"`
		Topic   *string `json:"topic"`
		Enabled *bool   `json:"enabled"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding topic: %w", err)
	}

	*t = Topic{Enabled: true}
	switch {
	case raw.Text != nil:
		t.Text = *raw.Text
	case raw.Topic != nil:
		t.Text = *raw.Topic
	}
	if raw.Enabled != nil {
		t.Enabled = *raw.Enabled
	}

	return nil
}

// Migrate decodes a stored topic list in any of its historical shapes.
// changed reports whether the stored bytes differ from the current shape
// and should be written back.
func Migrate(data []byte) (topics []Topic, changed bool, err error) {
	if len(data) == 0 {
		return []Topic{}, false, nil
	}

	if err := json.Unmarshal(data, &topics); err != nil {
		return nil, false, err
	}

	topics = slices.DeleteFunc(topics, func(t Topic) bool {
		return strings.TrimSpace(t.Text) == ""
	})
	if topics == nil {
		topics = []Topic{}
	}

	current, err := json.Marshal(topics)
	if err != nil {
		return nil, false, err
	}

	var before, after any
	_ = json.Unmarshal(data, &before)
	_ = json.Unmarshal(current, &after)
	return topics, !jsonEqual(before, after), nil
}

func jsonEqual(a, b any) bool {
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	return string(ab) == string(bb)
}

// EnabledTexts returns the text of every enabled topic, in order.
func EnabledTexts(topics []Topic) []string {
	texts := make([]string, 0, len(topics))
	for _, t := range topics {
		if t.Enabled {
			texts = append(texts, t.Text)
		}
	}
	return texts
}

func Add(topics []Topic, text string) ([]Topic, bool) {
	text = strings.TrimSpace(text)
	if text == "" || indexOf(topics, text) >= 0 {
		return topics, false
	}
	return append(topics, Topic{Text: text, Enabled: true}), true
}

func Remove(topics []Topic, text string) ([]Topic, bool) {
	i := indexOf(topics, text)
	if i < 0 {
		return topics, false
	}
	return slices.Delete(topics, i, i+1), true
}

// Toggle flips the enabled flag and returns the new value.
func Toggle(topics []Topic, text string) (enabled bool, found bool) {
	i := indexOf(topics, text)
	if i < 0 {
		return false, false
	}
	topics[i].Enabled = !topics[i].Enabled
	return topics[i].Enabled, true
}

// Merge appends the topics from incoming whose text isn't already present.
func Merge(existing, incoming []Topic) []Topic {
	out := slices.Clone(existing)
	for _, t := range incoming {
		if indexOf(out, t.Text) < 0 {
			out = append(out, t)
		}
	}
	return out
}

func indexOf(topics []Topic, text string) int {
	return slices.IndexFunc(topics, func(t Topic) bool { return t.Text == text })
}
