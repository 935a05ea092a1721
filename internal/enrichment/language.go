package enrichment

import (
	"strings"
	"unicode"
)

type language struct {
	code     string
	name     string
	scripts  []*unicode.RangeTable
	fallback string
	seeMore  string
}

var languages = map[string]language{
	"zh": {
		code:     "zh",
		name:     "Simplified Chinese",
		scripts:  []*unicode.RangeTable{unicode.Han},
		fallback: "今日AI动态收集完成，请查看下方详情。",
		seeMore:  "详见原文：",
	},
	"ja": {
		code:     "ja",
		name:     "Japanese",
		scripts:  []*unicode.RangeTable{unicode.Han, unicode.Hiragana, unicode.Katakana},
		fallback: "本日のAIニュースをまとめました。詳細は以下をご覧ください。",
		seeMore:  "詳細は原文へ：",
	},
	"ko": {
		code:     "ko",
		name:     "Korean",
		scripts:  []*unicode.RangeTable{unicode.Hangul},
		fallback: "오늘의 AI 소식을 정리했습니다. 아래에서 자세히 확인하세요.",
		seeMore:  "원문 참조: ",
	},
	"ru": {
		code:     "ru",
		name:     "Russian",
		scripts:  []*unicode.RangeTable{unicode.Cyrillic},
		fallback: "Сводка новостей ИИ за сегодня готова, подробности ниже.",
		seeMore:  "Подробнее в оригинале: ",
	},
	"en": {
		code:     "en",
		name:     "English",
		scripts:  []*unicode.RangeTable{unicode.Latin},
		fallback: "Today's AI digest is ready; see the details below.",
		seeMore:  "See the original: ",
	},
}

func lookupLanguage(code string) language {
	code = strings.ToLower(strings.TrimSpace(code))
	if lang, ok := languages[code]; ok {
		return lang
	}
	if i := strings.IndexAny(code, "-_"); i > 0 {
		if lang, ok := languages[code[:i]]; ok {
			return lang
		}
	}
	return languages["zh"]
}

// scriptRatio is the share of letters written in one of the target scripts.
// Text without letters counts as fully in the target script.
func (l language) scriptRatio(text string) float64 {
	var letters, inScript int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsOneOf(l.scripts, r) {
			inScript++
		}
	}
	if letters == 0 {
		return 1
	}
	return float64(inScript) / float64(letters)
}

func (l language) placeholder(title string) string {
	return l.seeMore + strings.TrimSpace(title)
}
