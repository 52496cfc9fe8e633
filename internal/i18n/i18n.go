package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

const DefaultLanguage = "ja"

var (
	supported = []language.Tag{language.Japanese, language.English}
	matcher   = language.NewMatcher(supported)
)

// Messages are the strings the daemon itself renders: CSV headers and the
// text handed to tabs for blocking and relevance warnings.
type Messages struct {
	BrowsingCSVHeader []string `json:"-"`
	PatienceCSVHeader []string `json:"-"`

	BlockTitle     string `json:"blockTitle"`
	BlockMessage   string `json:"blockMessage"`
	OverlayTitle   string `json:"overlayTitle"`
	OverlayMessage string `json:"overlayMessage"`
	OverlayDismiss string `json:"overlayDismiss"`
	OverlayScore   string `json:"overlayScore"`
}

var catalog = map[string]Messages{
	"ja": {
		BrowsingCSVHeader: []string{"日付", "ドメイン", "閲覧時間(分)", "判定機能"},
		PatienceCSVHeader: []string{"日付", "ドメイン", "我慢回数"},
		BlockTitle:        "ブロック中",
		BlockMessage:      "{site}は勉強中にブロックされています。",
		OverlayTitle:      "⚠️ 勉強に関係ありますか？",
		OverlayMessage:    "登録された勉強内容と関連が薄い可能性があります。",
		OverlayDismiss:    "関係ある（閉じる）",
		OverlayScore:      "類似度スコア: {score} (判定: 低)",
	},
	"en": {
		BrowsingCSVHeader: []string{"Date", "Domain", "Browsing Time (min)", "Blocking"},
		PatienceCSVHeader: []string{"Date", "Domain", "Patience Count"},
		BlockTitle:        "Blocked",
		BlockMessage:      "{site} is blocked during study time.",
		OverlayTitle:      "⚠️ Is this related to your study?",
		OverlayMessage:    "This content may not be related to your registered study topics.",
		OverlayDismiss:    "Yes, it's related (Close)",
		OverlayScore:      "Similarity score: {score} (Result: Low)",
	},
}

// Match picks the supported language closest to the given preferences,
// falling back to Japanese.
func Match(prefs ...string) string {
	tags := make([]language.Tag, 0, len(prefs))
	for _, p := range prefs {
		if tag, err := language.Parse(p); err == nil {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return DefaultLanguage
	}

	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLanguage
	}

	base, _ := supported[index].Base()
	return base.String()
}

// FromAcceptLanguage matches an HTTP Accept-Language header.
func FromAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}

	prefs := make([]string, len(tags))
	for i, t := range tags {
		prefs[i] = t.String()
	}
	return Match(prefs...)
}

func IsSupported(lang string) bool {
	_, ok := catalog[lang]
	return ok
}

func For(lang string) Messages {
	if m, ok := catalog[lang]; ok {
		return m
	}
	return catalog[DefaultLanguage]
}

func (m Messages) Blocked(site string) string {
	return strings.ReplaceAll(m.BlockMessage, "{site}", site)
}

func (m Messages) Score(score float64) string {
	return strings.ReplaceAll(m.OverlayScore, "{score}", fmt.Sprintf("%.2f", score))
}
