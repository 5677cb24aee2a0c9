// 包 mirror 负责主流程编排：
// - 以显式工作栈深度优先遍历远端目录树（按接口返回顺序）
// - 目录落地为本地子目录，文件条目交给下载器，已存在即跳过
// - 逐条容错：单个条目的失败只记录计数，不中断整体镜像
package mirror

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-adala-mirror/internal/config"
	"go-adala-mirror/internal/logx"
	"go-adala-mirror/internal/model"
	"go-adala-mirror/internal/sanitize"
	"go-adala-mirror/internal/store"
)

// Lister 为目录列举接口的窄抽象，便于测试替换远端实现。
type Lister interface {
	ListFolder(ctx context.Context, id string) (*model.Folder, error)
	FileURL(path string) string
}

// Fetcher 为文件下载的窄抽象。
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) (int64, error)
}

// Walker 为镜像执行器，持有配置/列举客户端/下载器/清单库。
type Walker struct {
	cfg    *config.Config
	lister Lister
	dl     Fetcher
	store  *store.SQLite // 极简模式下为 nil

	delay    time.Duration
	stats    model.Stats
	failures []model.Record
}

// New 创建 Walker；st 为 nil 时仅在内存中累计统计与失败明细。
func New(cfg *config.Config, lister Lister, dl Fetcher, st *store.SQLite) *Walker {
	return &Walker{cfg: cfg, lister: lister, dl: dl, store: st, delay: cfg.DownloadDelay()}
}

// frame 为工作栈中的一帧：目录 id 与其映射的本地路径。
type frame struct {
	id   string
	path string
}

// Run 对配置中的每个根分类执行镜像。
// 根分类直接映射到输出根目录，子分类才产生嵌套子目录。
// 输出根目录创建失败属于不可恢复错误；其余失败一律计数后继续。
func (w *Walker) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", w.cfg.OutputDir, err)
	}
	visited := map[string]bool{}
	for _, rootID := range w.cfg.RootFolders {
		logx.Infof("开始镜像根分类 %s → %s", rootID, w.cfg.OutputDir)
		if err := w.walk(ctx, frame{id: rootID, path: w.cfg.OutputDir}, visited); err != nil {
			return err
		}
	}
	return nil
}

// walk 以 LIFO 栈展开一棵子树；visited 以目录 id 防环（接口理论上无环，防御性兜底）。
func (w *Walker) walk(ctx context.Context, root frame, visited map[string]bool) error {
	stack := []frame{root}
	for len(stack) > 0 {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[fr.id] {
			logx.Warnf("目录 %s 重复出现（疑似环），已跳过", fr.id)
			continue
		}
		visited[fr.id] = true

		listing, err := w.listWithDelay(ctx, fr.id)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logx.Warnf("获取目录 %s 失败：%v", fr.id, err)
			w.stats.ListingsFailed++
			continue
		}
		w.stats.FoldersVisited++
		logx.Infof("目录 %s（%s）：文件=%d 子目录=%d", fr.id, listing.Name, len(listing.Files), len(listing.Folders))

		// 同一目录内的命名去重：键为已分配的路径段，值为来源标识
		taken := map[string]string{}

		// 先处理文件，再入栈子目录（与来源顺序一致的深度优先）
		for _, file := range listing.Files {
			if err := w.processFile(ctx, fr, file, taken); err != nil {
				return err
			}
		}
		subs := make([]frame, 0, len(listing.Folders))
		for _, sub := range listing.Folders {
			name := resolveCollision(taken, sanitizeFolder(sub.Name, sub.ID), sub.ID, "")
			subPath := filepath.Join(fr.path, name)
			if err := os.MkdirAll(subPath, 0o755); err != nil {
				logx.Warnf("创建子目录失败：%s 错误=%v", subPath, err)
				continue
			}
			subs = append(subs, frame{id: sub.ID, path: subPath})
		}
		// 反序入栈，弹出顺序即为列举顺序
		for i := len(subs) - 1; i >= 0; i-- {
			stack = append(stack, subs[i])
		}
	}
	return nil
}

// processFile 处理单个文件条目：取名→去重→存在即跳过→下载→记录。
func (w *Walker) processFile(ctx context.Context, fr frame, file model.FileRef, taken map[string]string) error {
	name := fileName(file)
	name = resolveCollision(taken, name, file.Path, filepath.Ext(name))
	dest := filepath.Join(fr.path, name)

	if _, err := os.Stat(dest); err == nil {
		logx.Debugf("已存在，跳过：%s", dest)
		w.stats.FilesSkipped++
		return nil
	}

	w.stats.FilesAttempted++
	u := w.lister.FileURL(file.Path)
	n, err := w.dl.Fetch(ctx, u, dest)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logx.Warnf("文件下载失败：%s 错误=%v", dest, err)
		w.stats.FilesFailed++
		w.record(ctx, model.Record{
			Path: dest, URL: u, FolderID: fr.id,
			Status: model.StatusFailed, Error: err.Error(), CreatedAt: time.Now(),
		})
	} else {
		logx.Infof("已保存：%s（%d 字节）", dest, n)
		w.stats.FilesDownloaded++
		w.record(ctx, model.Record{
			Path: dest, URL: u, FolderID: fr.id,
			Status: model.StatusOK, Size: n, CreatedAt: time.Now(),
		})
	}
	return w.sleep(ctx)
}

// record 写入清单库（若有）并在内存中留存失败明细。
func (w *Walker) record(ctx context.Context, r model.Record) {
	if r.Status == model.StatusFailed {
		w.failures = append(w.failures, r)
	}
	if w.store != nil {
		if err := w.store.UpsertRecord(ctx, r); err != nil {
			logx.Warnf("写入下载记录失败：%v", err)
		}
	}
}

// listWithDelay 列举目录并紧随礼貌性暂停（每次网络操作之后都暂停）。
func (w *Walker) listWithDelay(ctx context.Context, id string) (*model.Folder, error) {
	listing, err := w.lister.ListFolder(ctx, id)
	if serr := w.sleep(ctx); serr != nil {
		return nil, serr
	}
	return listing, err
}

// sleep 执行可取消的礼貌性暂停。
func (w *Walker) sleep(ctx context.Context) error {
	if w.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(w.delay):
		return nil
	}
}

// Stats 返回统计快照。
func (w *Walker) Stats() model.Stats {
	st := w.stats
	st.UpdatedAt = time.Now()
	return st
}

// Failures 返回本轮失败明细（极简模式下作为报告数据源）。
func (w *Walker) Failures() []model.Record {
	return w.failures
}

// fileName 推导文件条目的安全文件名：
// name 缺失时回退到 path 的（反转义后的）末段，并统一补齐 .pdf 后缀。
func fileName(file model.FileRef) string {
	name := file.Name
	if name == "" {
		base := file.Path
		if i := strings.LastIndex(base, "/"); i >= 0 {
			base = base[i+1:]
		}
		if un, err := url.PathUnescape(base); err == nil {
			base = un
		}
		name = base
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return sanitizeFile(name, file.Path)
}

// resolveCollision 保证目录内路径段唯一：
// 首个使用者保留原名，之后来源不同的同名条目追加短标识后缀。
func resolveCollision(taken map[string]string, name, sourceKey, ext string) string {
	if owner, ok := taken[name]; !ok || owner == sourceKey {
		taken[name] = sourceKey
		return name
	}
	stem := strings.TrimSuffix(name, ext)
	name = fmt.Sprintf("%s (%s)%s", stem, shortKey(sourceKey), ext)
	taken[name] = sourceKey
	return name
}

// sanitizeFolder / sanitizeFile 统一净化与占位名回退。
func sanitizeFolder(name, id string) string {
	return sanitize.Name(name, "folder_"+shortKey(id))
}

func sanitizeFile(name, path string) string {
	return sanitize.Name(name, "file_"+shortKey(path)+".pdf")
}

// shortKey 将来源标识压缩为适合做文件名后缀的短串：
// 短数字 id 原样使用，长路径取 FNV 摘要。
func shortKey(sourceKey string) string {
	if len(sourceKey) <= 12 && !strings.ContainsAny(sourceKey, `/\<>:"|?* `) {
		return sourceKey
	}
	h := fnv.New32a()
	h.Write([]byte(sourceKey))
	return fmt.Sprintf("%08x", h.Sum32())
}
