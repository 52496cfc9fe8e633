package topics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	got := Expand([]string{"Math", "physics"})

	assert.Equal(t, []string{"Math", "physics", "mathematics", "calculus", "algebra", "geometry", "statistics"}, got)
}

func TestExpand_NoRecursion(t *testing.T) {
	// "programming" is a synonym of "program" but has no entry of its own
	assert.Equal(t, []string{"programming"}, Expand([]string{"programming"}))
	assert.Empty(t, Expand(nil))
}

func TestExpand_Japanese(t *testing.T) {
	got := Expand([]string{"英語"})
	assert.Contains(t, got, "TOEIC")
	assert.Contains(t, got, "英会話")
	assert.Equal(t, "英語", got[0])
}

func TestMigrate(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    []Topic
		changed bool
	}{
		{
			name:    "plain strings",
			data:    `["math","english"]`,
			want:    []Topic{{Text: "math", Enabled: true}, {Text: "english", Enabled: true}},
			changed: true,
		},
		{
			name:    "legacy topic key",
			data:    `[{"topic":"math","enabled":false}]`,
			want:    []Topic{{Text: "math", Enabled: false}},
			changed: true,
		},
		{
			name:    "current shape",
			data:    `[{"text":"math","enabled":true}]`,
			want:    []Topic{{Text: "math", Enabled: true}},
			changed: false,
		},
		{
			name:    "empty",
			data:    ``,
			want:    []Topic{},
			changed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed, err := Migrate([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestTopic_MarshalUsesText(t *testing.T) {
	data, err := json.Marshal(Topic{Text: "math", Enabled: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"math","enabled":true}`, string(data))
}

func TestManagement(t *testing.T) {
	list, ok := Add(nil, " math ")
	assert.True(t, ok)
	list, ok = Add(list, "math")
	assert.False(t, ok)

	enabled, found := Toggle(list, "math")
	assert.True(t, found)
	assert.False(t, enabled)
	assert.Empty(t, EnabledTexts(list))

	merged := Merge(list, []Topic{{Text: "math", Enabled: true}, {Text: "英語", Enabled: true}})
	assert.Equal(t, []Topic{{Text: "math", Enabled: false}, {Text: "英語", Enabled: true}}, merged)

	list, ok = Remove(list, "math")
	assert.True(t, ok)
	assert.Empty(t, list)
}
