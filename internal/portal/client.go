// 包 portal 封装门户的目录列举接口：
// - ListFolder：按 id 获取目录内容并归一化为 model.Folder
// - 对接口形态漂移保持容错：缺字段的条目记日志后跳过，不中断整体流程
package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"go-adala-mirror/internal/fetch"
	"go-adala-mirror/internal/logx"
	"go-adala-mirror/internal/model"
)

// Client 为目录接口客户端，持有站点根地址与 HTTP 客户端。
type Client struct {
	base string
	cl   *fetch.Client
}

// New 创建客户端；base 为站点根地址（如 https://adala.justice.gov.ma）。
func New(base string, cl *fetch.Client) *Client {
	return &Client{base: strings.TrimRight(base, "/"), cl: cl}
}

// listing 为接口原始响应形态（未文档化，按实际观察到的字段解码）。
type listing struct {
	Name    string `json:"name"`
	Folders []struct {
		ID   model.FlexID `json:"id"`
		Name string       `json:"name"`
	} `json:"folders"`
	Files []struct {
		Name string `json:"name"`
		Path string `json:"path"`
	} `json:"files"`
}

// ListFolder 获取目录 id 的条目列表。
// 带重试（由 fetch.Client 负责）；响应中缺 id 的子目录与缺 path 的文件跳过。
func (c *Client) ListFolder(ctx context.Context, id string) (*model.Folder, error) {
	u := fmt.Sprintf("%s/api/folders/%s", c.base, url.PathEscape(id))
	resp, err := c.cl.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("GET folder %s: %w", id, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", id, err)
	}
	var raw listing
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal folder %s: %w", id, err)
	}
	out := &model.Folder{ID: id, Name: strings.TrimSpace(raw.Name)}
	if out.Name == "" {
		out.Name = "folder_" + id
	}
	for _, f := range raw.Folders {
		if f.ID == "" {
			logx.Warnf("目录 %s 含缺少 id 的子目录条目，已跳过：%q", id, f.Name)
			continue
		}
		out.Folders = append(out.Folders, model.FolderRef{ID: f.ID.String(), Name: strings.TrimSpace(f.Name)})
	}
	for _, f := range raw.Files {
		if strings.TrimSpace(f.Path) == "" {
			logx.Warnf("目录 %s 含缺少 path 的文件条目，已跳过：%q", id, f.Name)
			continue
		}
		out.Files = append(out.Files, model.FileRef{Name: strings.TrimSpace(f.Name), Path: strings.TrimSpace(f.Path)})
	}
	return out, nil
}

// FileURL 将文件条目的相对 path 拼接为完整下载地址。
func (c *Client) FileURL(path string) string {
	return c.base + "/api/" + strings.TrimLeft(path, "/")
}
