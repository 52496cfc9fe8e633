package topics

import "strings"

var synonyms = map[string][]string{
	"program": {
		"programming", "coding", "algorithm", "software", "developer",
		"engineering", "python", "javascript", "c#", "java", "code",
	},
	"プログラム": {
		"プログラミング", "コーディング", "アルゴリズム", "ソフトウェア",
		"開発", "エンジニア", "コード", "アプリ",
	},
	"math": {
		"mathematics", "calculus", "algebra", "geometry", "statistics", "physics",
	},
	"数学": {
		"算数", "計算", "幾何学", "代数", "微積分", "統計", "物理", "数式",
	},
	"english": {
		"language", "grammar", "vocabulary", "toeic", "toefl", "conversation",
	},
	"英語": {
		"英単語", "英文法", "英会話", "語学", "TOEIC", "留学",
	},
	"study": {
		"learning", "education", "course", "textbook",
	},
	"勉強": {
		"学習", "教育", "参考書", "教科書", "学び",
	},
}

// Expand returns the topics followed by their synonyms, without duplicates.
// Synonyms are not expanded further.
func Expand(topics []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(topics))

	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, t := range topics {
		add(t)
	}
	for _, t := range topics {
		for _, syn := range synonyms[strings.ToLower(t)] {
			add(syn)
		}
	}

	return out
}
