// 包 sanitize 将远端展示名转换为文件系统安全的路径段：
// - 替换保留字符与控制字符，保留 Unicode（含阿拉伯文）原样
// - 去除首尾的点与空格，限制长度
// - 结果为空时回退到基于标识符的占位名
package sanitize

import "strings"

// maxSegment 为单个路径段的最大长度（Windows 路径组件上限的保守取值）。
const maxSegment = 200

// Name 返回 raw 的安全路径段；若净化后为空则返回 fallback。
// 调用方负责提供非空的 fallback（如 file_<id> / folder_<id>）。
func Name(raw, fallback string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r == '<' || r == '>' || r == ':' || r == '"' ||
			r == '/' || r == '\\' || r == '|' || r == '?' || r == '*':
			b.WriteByte('_')
		case r < 0x20 || r == 0x7f:
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	s := strings.Trim(b.String(), ". ")
	if n := []rune(s); len(n) > maxSegment {
		s = strings.Trim(string(n[:maxSegment]), ". ")
	}
	if s == "" {
		return fallback
	}
	return s
}
