// 包 export 负责运行报告导出：将统计与失败明细写为 report.json，
// 便于操作者不重跑全量即可定位缺口。
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go-adala-mirror/internal/model"
	"go-adala-mirror/internal/store"
)

// ToJSON 从清单库读取失败明细并连同统计写入 JSON 文件（带缩进格式）。
func ToJSON(ctx context.Context, s *store.SQLite, stats model.Stats, path string) error {
	failures, err := s.ListFailures(ctx)
	if err != nil {
		return fmt.Errorf("list failures: %w", err)
	}
	return write(model.Report{Stats: stats, Failures: failures}, path)
}

// ToJSONData 直接将内存中的统计与失败明细写成 report.json（极简模式）。
func ToJSONData(stats model.Stats, failures []model.Record, path string) error {
	return write(model.Report{Stats: stats, Failures: failures}, path)
}

func write(rep model.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode json to %s: %w", path, err)
	}
	return nil
}
