// 包 store 提供下载清单的存储实现（SQLite），包含表迁移/写入/查询/清理等操作。
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"go-adala-mirror/internal/model"
)

// SQLite 封装 *sql.DB，基于 modernc.org/sqlite（纯 Go 实现）。
type SQLite struct {
	db *sql.DB
}

// OpenSQLite 打开 SQLite 数据库并执行自动迁移。
func OpenSQLite(path string) (*SQLite, error) {
	// 说明：modernc sqlite 的 DSN 可直接使用文件路径，或以 'file:...' 前缀表示
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// Reset 清空清单表（不删除数据库文件）。
func (s *SQLite) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM downloads`); err != nil {
		return fmt.Errorf("delete downloads: %w", err)
	}
	return nil
}

// migrate 执行建表语句，保持幂等。
func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS downloads (
            path TEXT UNIQUE,
            url TEXT,
            folder_id TEXT,
            status TEXT,
            error TEXT,
            size INTEGER,
            created_at TIMESTAMP
        );`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("exec migrate: %w", err)
		}
	}
	return nil
}

// UpsertRecord 插入或更新下载记录（path 唯一约束）。
// 同一文件重试成功后会覆盖之前的失败记录。
func (s *SQLite) UpsertRecord(ctx context.Context, r model.Record) error {
	if r.Path == "" {
		return errors.New("record.path required")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO downloads(path, url, folder_id, status, error, size, created_at)
        VALUES(?,?,?,?,?,?,?)
        ON CONFLICT(path) DO UPDATE SET url=excluded.url, folder_id=excluded.folder_id, status=excluded.status, error=excluded.error, size=excluded.size`,
		r.Path, r.URL, r.FolderID, r.Status, r.Error, r.Size, nowOr(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", r.Path, err)
	}
	return nil
}

// ListFailures 返回全部失败记录，按路径排序。
func (s *SQLite) ListFailures(ctx context.Context) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, url, folder_id, status, COALESCE(error,''), size, created_at FROM downloads WHERE status = ? ORDER BY path`, model.StatusFailed)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()
	var out []model.Record
	for rows.Next() {
		var r model.Record
		var createdAt sql.NullTime
		if err := rows.Scan(&r.Path, &r.URL, &r.FolderID, &r.Status, &r.Error, &r.Size, &createdAt); err != nil {
			return nil, fmt.Errorf("scan failures: %w", err)
		}
		if createdAt.Valid {
			r.CreatedAt = createdAt.Time
		} else {
			r.CreatedAt = time.Now()
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures: %w", err)
	}
	return out, nil
}

// Counts 统计清单中的成功/失败数量（用于跨轮次核对缺口）。
func (s *SQLite) Counts(ctx context.Context) (ok int, failed int, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM downloads WHERE status = ?`, model.StatusOK).Scan(&ok); err != nil {
		return 0, 0, fmt.Errorf("count ok: %w", err)
	}
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM downloads WHERE status = ?`, model.StatusFailed).Scan(&failed); err != nil {
		return 0, 0, fmt.Errorf("count failed: %w", err)
	}
	return ok, failed, nil
}

func nowOr(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
