// 包 download 负责单个文件的落盘下载：
// - 先写入 .part 临时文件，成功后改名到目标路径（目标存在即代表完整）
// - 失败/截断时删除半成品，按配置的间隔重试，用尽次数后返回最后的错误
package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go-adala-mirror/internal/fetch"
	"go-adala-mirror/internal/logx"
)

// Downloader 为带重试的文件下载器。
type Downloader struct {
	cl         *fetch.Client
	maxRetries int
	retryDelay time.Duration
}

// New 创建下载器；maxRetries 为单文件总尝试次数（>=1）。
func New(cl *fetch.Client, maxRetries int, retryDelay time.Duration) *Downloader {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Downloader{cl: cl, maxRetries: maxRetries, retryDelay: retryDelay}
}

// Fetch 下载 url 到 dest，返回写入的字节数。
// 重试在本层完成（而非 fetch.Client），以便在两次尝试之间清理半成品。
func (d *Downloader) Fetch(ctx context.Context, url, dest string) (int64, error) {
	var lastErr error
	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		n, err := d.fetchOnce(ctx, url, dest)
		if err == nil {
			return n, nil
		}
		lastErr = err
		logx.Warnf("下载失败（第 %d/%d 次）：%s 错误=%v", attempt, d.maxRetries, url, err)
		if attempt == d.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(d.retryDelay):
		}
	}
	return 0, lastErr
}

// fetchOnce 单次尝试：写临时文件并校验长度，任何失败都不留下半成品。
func (d *Downloader) fetchOnce(ctx context.Context, url, dest string) (n int64, err error) {
	resp, err := d.cl.GetOnce(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	part := dest + ".part"
	f, err := os.Create(part)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", part, err)
	}
	defer func() {
		if err != nil {
			os.Remove(part)
		}
	}()

	n, copyErr := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		return 0, fmt.Errorf("write %s: %w", part, copyErr)
	}
	if closeErr != nil {
		return 0, fmt.Errorf("close %s: %w", part, closeErr)
	}
	// 服务端给出 Content-Length 时校验实际写入量，防止截断内容冒充完整文件
	if resp.ContentLength >= 0 && n != resp.ContentLength {
		return 0, fmt.Errorf("truncated body: got %d bytes, want %d", n, resp.ContentLength)
	}
	if err = os.Rename(part, dest); err != nil {
		return 0, fmt.Errorf("rename %s: %w", part, err)
	}
	return n, nil
}
