package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	assert.Equal(t, "en", Match("en-US"))
	assert.Equal(t, "ja", Match("ja-JP"))
	assert.Equal(t, "ja", Match())
	assert.Equal(t, "ja", Match("not a tag!"))
	assert.Equal(t, "en", FromAcceptLanguage("en-GB,en;q=0.9"))
	assert.Equal(t, "ja", FromAcceptLanguage(""))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "reddit.com is blocked during study time.", For("en").Blocked("reddit.com"))
	assert.Equal(t, "類似度スコア: 0.12 (判定: 低)", For("fr").Score(0.123))
	assert.Equal(t, []string{"日付", "ドメイン", "我慢回数"}, For("ja").PatienceCSVHeader)
	assert.True(t, IsSupported("en"))
	assert.False(t, IsSupported("fr"))
}
