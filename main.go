// 命令行入口：
// - 解析 flags 与 settings.yaml/rules.yaml
// - 初始化日志、HTTP 客户端、清单库
// - 支持分类页发现调试（-discover）与运行报告导出（report.json）
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go-adala-mirror/internal/config"
	"go-adala-mirror/internal/discover"
	"go-adala-mirror/internal/download"
	"go-adala-mirror/internal/export"
	"go-adala-mirror/internal/fetch"
	"go-adala-mirror/internal/logx"
	"go-adala-mirror/internal/mirror"
	"go-adala-mirror/internal/portal"
	"go-adala-mirror/internal/rules"
	"go-adala-mirror/internal/store"
)

func main() {
	var (
		configPath   = flag.String("config", "settings.yaml", "path to settings.yaml")
		rulesPath    = flag.String("rules", "rules.yaml", "path to rules.yaml (optional)")
		reportPath   = flag.String("report", "report.json", "export report json path")
		discoverMode = flag.Bool("discover", false, "print discovered root categories from the portal page and exit")
	)
	flag.Parse()

	// 1) 加载配置与规则
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	var rl *rules.Rules
	if *rulesPath != "" {
		if r, err := rules.Load(*rulesPath); err == nil {
			rl = r
		} else {
			log.Printf("load rules failed: %v", err)
		}
	}
	// 2) 初始化日志：级别/格式/语言/颜色
	logx.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogLocale, cfg.LogColor)

	// 3) 初始化 HTTP 客户端（含代理、超时与列举重试）
	cl, err := fetch.New(fetch.Options{
		ProxyHTTP:  cfg.Proxy.HTTP,
		ProxyHTTPS: cfg.Proxy.HTTPS,
		Timeout:    cfg.Timeout(),
		Retry:      cfg.MaxRetries - 1,
		Referer:    cfg.BaseURL,
	})
	if err != nil {
		log.Fatalf("http client: %v", err)
	}

	ctx := context.Background()
	if *discoverMode {
		// 4) 调试：仅解析分类页并打印候选根分类后退出
		if cfg.Discover.URL == "" {
			logx.Warnf("未配置 DISCOVER.url，无法发现分类。")
			return
		}
		var preset rules.Preset
		if rl != nil {
			if p, ok := rl.GetPreset(cfg.Discover.Theme); ok {
				preset = p
			}
		}
		list, err := discover.ParseCategoryPage(ctx, cl, cfg.Discover.URL, preset)
		if err != nil {
			logx.Errorf("解析分类页失败：%s 错误=%v", cfg.Discover.URL, err)
			os.Exit(1)
		}
		logx.Infof("%s 解析到 %d 个分类", cfg.Discover.URL, len(list))
		for _, c := range list {
			logx.Infof("- id=%s 名称=%q", c.ID, c.Name)
		}
		if len(list) == 0 {
			logx.Warnf("未从分类页发现条目，请检查 DISCOVER.url 与 rules.yaml 选择器。")
		}
		return
	}

	// 5) 输出根目录：创建失败属于不可恢复的启动错误
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Fatalf("create output dir %s: %v", cfg.OutputDir, err)
	}

	// 6) 清单库：极简模式不打开数据库；正常模式打开并按需重置
	var st *store.SQLite
	if !cfg.SimpleMode {
		st, err = store.OpenSQLite(cfg.Database.DSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer st.Close()
		if cfg.ResetOnStart {
			if err := st.Reset(ctx); err != nil {
				logx.Warnf("启动清理清单库失败：%v", err)
			} else {
				logx.Infof("已清理清单表（downloads）")
			}
		}
	} else {
		logx.Infof("极简模式：跳过清单库")
	}

	// 7) 运行镜像流程
	pc := portal.New(cfg.BaseURL, cl)
	dl := download.New(cl, cfg.MaxRetries, cfg.RetryDelay())
	w := mirror.New(cfg, pc, dl, st)
	logx.Infof("开始镜像：根分类=%v 输出目录=%s", cfg.RootFolders, cfg.OutputDir)
	if err := w.Run(ctx); err != nil {
		logx.Errorf("运行失败：%v", err)
		os.Exit(1)
	}

	// 8) 汇总与报告：单个文件失败不改变退出码
	stats := w.Stats()
	logx.Infof("镜像完成：目录=%d 尝试=%d 下载=%d 已存在=%d 失败=%d 列举失败=%d",
		stats.FoldersVisited, stats.FilesAttempted, stats.FilesDownloaded,
		stats.FilesSkipped, stats.FilesFailed, stats.ListingsFailed)
	if *reportPath != "" {
		var exportErr error
		if st != nil {
			exportErr = export.ToJSON(ctx, st, stats, *reportPath)
		} else {
			exportErr = export.ToJSONData(stats, w.Failures(), *reportPath)
		}
		if exportErr != nil {
			logx.Warnf("导出报告失败：%v", exportErr)
		} else {
			logx.Infof("已导出 %s", *reportPath)
		}
	}
}
