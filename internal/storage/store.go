// Package storage 基于SQLite的用户与扫描历史持久化
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ZhaoYaoJing/internal/model"
	"ZhaoYaoJing/internal/utils"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("记录不存在")

// Store 用户与扫描历史存储
type Store struct {
	db     *sql.DB
	logger *utils.Logger
}

// Open 打开数据库并初始化表结构
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	store := &Store{
		db:     db,
		logger: utils.NewLogger("storage"),
	}

	if err := store.initTables(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *Store) initTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT DEFAULT 'user',
		is_active INTEGER DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS scan_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		target TEXT NOT NULL,
		port_range TEXT NOT NULL,
		result_json TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_scan_user ON scan_history(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// DB 暴露底层连接（cvedb缓存复用同一个库文件）
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close 关闭数据库
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser 创建用户，邮箱重复时返回错误
func (s *Store) CreateUser(fullName, email, passwordHash, role string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO users (full_name, email, password_hash, role, is_active)
		VALUES (?, ?, ?, ?, 1)`,
		fullName, email, passwordHash, role,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetUserByEmail 按邮箱查用户
func (s *Store) GetUserByEmail(email string) (*model.User, error) {
	return s.scanUser(s.db.QueryRow(`
		SELECT id, full_name, email, password_hash, role, is_active, created_at
		FROM users WHERE email = ?`, email))
}

// GetUserByID 按ID查用户
func (s *Store) GetUserByID(id int64) (*model.User, error) {
	return s.scanUser(s.db.QueryRow(`
		SELECT id, full_name, email, password_hash, role, is_active, created_at
		FROM users WHERE id = ?`, id))
}

func (s *Store) scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var isActive int
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &isActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.IsActive = isActive != 0
	return &u, nil
}

// ListUsers 按ID倒序返回全部用户
func (s *Store) ListUsers() ([]model.User, error) {
	rows, err := s.db.Query(`
		SELECT id, full_name, email, password_hash, role, is_active, created_at
		FROM users ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var isActive int
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &isActive, &u.CreatedAt); err != nil {
			continue
		}
		u.IsActive = isActive != 0
		users = append(users, u)
	}
	return users, rows.Err()
}

// SaveScan 保存一条扫描记录，结果作为不透明JSON存储
func (s *Store) SaveScan(userID int64, target, portRange, resultJSON string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO scan_history (user_id, target, port_range, result_json)
		VALUES (?, ?, ?, ?)`,
		userID, target, portRange, resultJSON,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListScansByUser 返回指定用户的扫描历史，按ID倒序
func (s *Store) ListScansByUser(userID int64) ([]model.ScanRecord, error) {
	return s.queryScans(`
		SELECT id, user_id, target, port_range, result_json, created_at
		FROM scan_history WHERE user_id = ? ORDER BY id DESC`, userID)
}

// GetScanByID 返回属于指定用户的单条扫描记录
func (s *Store) GetScanByID(scanID, userID int64) (*model.ScanRecord, error) {
	var rec model.ScanRecord
	err := s.db.QueryRow(`
		SELECT id, user_id, target, port_range, result_json, created_at
		FROM scan_history WHERE id = ? AND user_id = ?`,
		scanID, userID,
	).Scan(&rec.ID, &rec.UserID, &rec.Target, &rec.PortRange, &rec.ResultJSON, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListAllScans 管理端: 返回最近limit条扫描记录
func (s *Store) ListAllScans(limit int) ([]model.ScanRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.queryScans(`
		SELECT id, user_id, target, port_range, result_json, created_at
		FROM scan_history ORDER BY id DESC LIMIT ?`, limit)
}

// DeleteScan 管理端: 删除扫描记录
func (s *Store) DeleteScan(scanID int64) error {
	res, err := s.db.Exec(`DELETE FROM scan_history WHERE id = ?`, scanID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) queryScans(query string, args ...interface{}) ([]model.ScanRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.ScanRecord
	for rows.Next() {
		var rec model.ScanRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Target, &rec.PortRange, &rec.ResultJSON, &rec.CreatedAt); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// EnsureDefaultAdmin 默认管理员不存在时创建
func (s *Store) EnsureDefaultAdmin(email, passwordHash string) error {
	_, err := s.GetUserByEmail(email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO users (full_name, email, password_hash, role, is_active)
		VALUES (?, ?, ?, 'admin', 1)`,
		"ZhaoYaoJing Admin", email, passwordHash,
	)
	if err == nil {
		s.logger.Info("已创建默认管理员账号: %s", email)
	}
	return err
}
