package parser

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripDiacritics 去除变音符号
// "José" -> "Jose"，无法转换时原样返回
func StripDiacritics(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return out
}

// FoldName 姓名折叠：去变音符号、小写、去首尾空格
// 所有姓名比较都基于折叠后的形式
func FoldName(s string) string {
	return strings.ToLower(strings.TrimSpace(StripDiacritics(s)))
}

// NormalizeCell 规范化单元格值，去除首尾空白与回车
func NormalizeCell(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.TrimSpace(s)
}

// Initial 返回折叠后的首字符，空串返回 0
func Initial(s string) rune {
	for _, r := range FoldName(s) {
		return r
	}
	return 0
}

// Levenshtein 计算两个字符串的编辑距离（按 rune 计）
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// IsLikelyURL 判断值是否为可解析的 http(s) 链接
func IsLikelyURL(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Host != ""
}

// 套牌文本行形如 "4 Lightning Bolt" / "2x Island"
var decklistLineRe = regexp.MustCompile(`(?m)^\s*\d+x?\s+\S+`)

// LooksLikeDecklist 判断值是否为套牌列表形状的多行文本
// 至少两行符合 "数量 卡名" 模式才认定
func LooksLikeDecklist(s string) bool {
	if !strings.Contains(s, "\n") {
		return false
	}
	return len(decklistLineRe.FindAllString(s, 3)) >= 2
}
