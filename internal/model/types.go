// 包 model 定义镜像所需的数据模型（远端目录/文件条目/下载记录/统计/报告）。
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FlexID 兼容字符串与数字两种 JSON 形态的标识符。
// 远端接口未文档化，id 字段的类型可能漂移，统一归一化为字符串。
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*f = ""
		return nil
	}
	if s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return fmt.Errorf("unmarshal id: %w", err)
		}
		*f = FlexID(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("unmarshal id: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string { return string(f) }

// Folder 为一次目录列举的归一化结果：自身名称、子目录与文件条目。
type Folder struct {
	ID      string
	Name    string
	Folders []FolderRef
	Files   []FileRef
}

// FolderRef 为子目录条目（内容需再次调用接口惰性获取）。
type FolderRef struct {
	ID   string
	Name string
}

// FileRef 为文件条目：Name 可能为空，Path 为下载引用（相对路径）。
type FileRef struct {
	Name string
	Path string
}

// Record 为单个文件的下载结果（写入清单库与报告）。
type Record struct {
	Path      string    `json:"path"`
	URL       string    `json:"url"`
	FolderID  string    `json:"folder_id"`
	Status    string    `json:"status"` // ok|failed
	Error     string    `json:"error,omitempty"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// 下载记录状态常量。
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Stats 为一轮镜像的统计信息。
type Stats struct {
	FoldersVisited  int       `json:"folders_visited"`
	ListingsFailed  int       `json:"listings_failed"`
	FilesAttempted  int       `json:"files_attempted"`
	FilesDownloaded int       `json:"files_downloaded"`
	FilesSkipped    int       `json:"files_skipped"`
	FilesFailed     int       `json:"files_failed"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Report 为 report.json 顶层结构：统计 + 失败明细。
type Report struct {
	Stats    Stats    `json:"stats"`
	Failures []Record `json:"failures"`
}
