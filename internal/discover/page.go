// 包 discover 提供分类页解析（-discover 调试模式）：
// - 依据 rules.yaml 预设的 CSS 选择器获取分类的 name/link
// - 支持 "选择器@属性" 以及 "||" 多方案回退与相对 URL 绝对化
// - 从链接末段提取数字 id，用于填写 ROOT_FOLDERS
package discover

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go-adala-mirror/internal/fetch"
	"go-adala-mirror/internal/model"
	"go-adala-mirror/internal/rules"
)

// 分类链接末段的数字 id，如 /folders/569 或 .../resources?id=12
var idPattern = regexp.MustCompile(`(\d+)\s*$`)

// ParseCategoryPage 根据选择器预设从门户分类页抽取根分类候选。
// 规则语法：
// - 文本：".name" 或 "."（取当前项文本）
// - 属性："a@href"/"@href"（当前项属性）
// - 回退：使用 "||" 连接多个候选，按先后尝试
// 无法提取数字 id 的条目会被丢弃。
func ParseCategoryPage(ctx context.Context, cl *fetch.Client, pageURL string, preset rules.Preset) ([]model.FolderRef, error) {
	if preset.CategoryPage == nil {
		return nil, nil
	}
	resp, err := cl.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("GET category page %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(b)))
	if err != nil {
		return nil, fmt.Errorf("parse category page html: %w", err)
	}
	cp := preset.CategoryPage
	var out []model.FolderRef
	doc.Find(cp.Item).Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(getVal(s, cp.Name))
		link := abs(pageURL, getVal(s, cp.Link))
		m := idPattern.FindStringSubmatch(link)
		if m == nil {
			return
		}
		out = append(out, model.FolderRef{ID: m[1], Name: name})
	})
	return out, nil
}

// getVal 解析表达式并支持使用 "||" 作为回退分隔，例如："a@href||@href" 或 ".name||."。
func getVal(scope *goquery.Selection, expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return ""
	}
	if strings.Contains(expr, "||") {
		for _, p := range strings.Split(expr, "||") {
			if v := getValSingle(scope, strings.TrimSpace(p)); v != "" {
				return v
			}
		}
		return ""
	}
	return getValSingle(scope, expr)
}

// getValSingle 解析单个表达式：文本或属性读取。
func getValSingle(scope *goquery.Selection, expr string) string {
	if expr == "" {
		return ""
	}
	if expr == "." {
		return strings.TrimSpace(scope.Text())
	}
	if at := strings.Index(expr, "@"); at != -1 {
		sel := strings.TrimSpace(expr[:at])
		attr := strings.TrimSpace(expr[at+1:])
		if sel == "" {
			val, _ := scope.Attr(attr)
			return strings.TrimSpace(val)
		}
		if el := scope.Find(sel).First(); el != nil {
			val, _ := el.Attr(attr)
			return strings.TrimSpace(val)
		}
		return ""
	}
	if el := scope.Find(expr).First(); el != nil {
		return strings.TrimSpace(el.Text())
	}
	return ""
}

// abs 将相对链接转换为绝对 URL。
func abs(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	bu, err := url.Parse(base)
	if err != nil {
		return ref
	}
	ru, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return bu.ResolveReference(ru).String()
}
