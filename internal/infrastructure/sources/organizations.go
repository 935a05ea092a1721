package sources

import "strings"

type orgPattern struct {
	pattern string
	name    string
}

// organizations maps lowercase substrings to display names. Order matters:
// the first matching pattern wins.
var organizations = []orgPattern{
	{"openai", "OpenAI"},
	{"google", "Google"},
	{"deepmind", "DeepMind"},
	{"google deepmind", "DeepMind"},
	{"anthropic", "Anthropic"},
	{"meta", "Meta"},
	{"meta ai", "Meta AI"},
	{"facebook", "Meta"},
	{"microsoft", "Microsoft"},
	{"microsoft research", "Microsoft"},
	{"apple", "Apple"},
	{"amazon", "Amazon"},
	{"aws", "Amazon"},
	{"nvidia", "NVIDIA"},
	{"stability ai", "Stability AI"},
	{"stability", "Stability AI"},
	{"mistral", "Mistral AI"},
	{"cohere", "Cohere"},
	{"ai21", "AI21 Labs"},
	{"hugging face", "Hugging Face"},
	{"huggingface", "Hugging Face"},
	{"xai", "xAI"},
	{"inflection", "Inflection AI"},
	{"character.ai", "Character.AI"},
	{"adept", "Adept"},
	{"runway", "Runway"},
	{"baidu", "Baidu"},
	{"alibaba", "Alibaba"},
	{"tencent", "Tencent"},
	{"bytedance", "ByteDance"},
	{"zhipu", "智谱AI"},
	{"zhipu ai", "智谱AI"},
	{"智谱", "智谱AI"},
	{"moonshot", "月之暗面"},
	{"月之暗面", "月之暗面"},
	{"kimi", "月之暗面"},
	{"deepseek", "DeepSeek"},
	{"深度求索", "DeepSeek"},
	{"minimax", "MiniMax"},
	{"manus", "Manus"},
	{"stepfun", "阶跃星辰"},
	{"阶跃星辰", "阶跃星辰"},
	{"01.ai", "零一万物"},
	{"零一万物", "零一万物"},
	{"yi-", "零一万物"},
	{"baichuan", "百川智能"},
	{"百川智能", "百川智能"},
	{"sensetime", "商汤科技"},
	{"megvii", "旷视科技"},
	{"stanford", "Stanford"},
	{"mit ", "MIT"},
	{"berkeley", "UC Berkeley"},
	{"cmu", "CMU"},
	{"carnegie mellon", "CMU"},
	{"harvard", "Harvard"},
	{"princeton", "Princeton"},
	{"oxford", "Oxford"},
	{"cambridge", "Cambridge"},
	{"eth zurich", "ETH Zurich"},
	{"tsinghua", "清华大学"},
	{"peking", "北京大学"},
	{"fair", "Meta FAIR"},
	{"bair", "UC Berkeley"},
	{"allen institute", "Allen Institute"},
	{"eleutherai", "EleutherAI"},
	{"shanghai ai", "上海AI实验室"},
	{"beijing academy", "北京智源"},
	{"chinese academy", "中国科学院"},
}

// priorityPatterns are checked before the full table.
var priorityPatterns = []string{
	"openai", "deepmind", "google deepmind", "anthropic", "meta ai",
	"microsoft", "nvidia", "deepseek", "moonshot", "zhipu",
	"mistral", "cohere", "stability",
}

var organizationIndex = func() map[string]string {
	idx := make(map[string]string, len(organizations))
	for _, o := range organizations {
		idx[o.pattern] = o.name
	}
	return idx
}()

// detectOrganization returns the display name of the first lab mentioned in
// the title, abstract or author affiliations, or "" when none is found.
func detectOrganization(title, summary string, authors []string) string {
	text := strings.ToLower(title + " " + summary + " " + strings.Join(authors, " "))

	for _, p := range priorityPatterns {
		if strings.Contains(text, p) {
			return organizationIndex[p]
		}
	}
	for _, o := range organizations {
		if strings.Contains(text, o.pattern) {
			return o.name
		}
	}
	return ""
}
