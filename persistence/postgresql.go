// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/wfunc/drawguess/models"
)

// PostgreSQL is the plain database/sql implementation of Store, for
// deployments that want to stay off the ORM.
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            account VARCHAR(255) UNIQUE NOT NULL,
            name VARCHAR(100) NOT NULL,
            password VARCHAR(50) NOT NULL,
            sex INT DEFAULT 0,
            pic_path VARCHAR(255),
            last_ip VARCHAR(64),
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS words (
            id SERIAL PRIMARY KEY,
            word VARCHAR(100) UNIQUE NOT NULL,
            hint VARCHAR(255) NOT NULL,
            level INT DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`)
	return err
}

func (p *PostgreSQL) ExistUser(account string) (bool, error) {
	var count int
	err := p.db.QueryRow(`SELECT COUNT(1) FROM users WHERE account = $1`, account).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (p *PostgreSQL) CreateUser(user *models.GormUser) error {
	exists, err := p.ExistUser(user.Account)
	if err != nil {
		return err
	}
	if exists {
		return ErrUserExists
	}

	_, err = p.db.Exec(`
        INSERT INTO users (account, name, password, sex, pic_path, last_ip)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		user.Account, user.Name, user.Password, user.Sex, user.PicPath, user.LastIP)
	return err
}

func (p *PostgreSQL) GetUser(account string) (*models.GormUser, error) {
	var user models.GormUser
	err := p.db.QueryRow(`
        SELECT account, name, password, sex, pic_path, last_ip
        FROM users WHERE account = $1`, account).
		Scan(&user.Account, &user.Name, &user.Password, &user.Sex, &user.PicPath, &user.LastIP)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *PostgreSQL) RandomWord(level int) (*models.WordHint, error) {
	query := `SELECT word, hint FROM words ORDER BY random() LIMIT 1`
	args := []interface{}{}
	if level > 0 {
		query = `SELECT word, hint FROM words WHERE level = $1 ORDER BY random() LIMIT 1`
		args = append(args, level)
	}

	var word models.WordHint
	err := p.db.QueryRow(query, args...).Scan(&word.Word, &word.Hint)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &word, nil
}

func (p *PostgreSQL) RandomWords(count int) ([]models.WordHint, error) {
	rows, err := p.db.Query(`SELECT word, hint FROM words ORDER BY random() LIMIT $1`, count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []models.WordHint
	for rows.Next() {
		var word models.WordHint
		if err := rows.Scan(&word.Word, &word.Hint); err != nil {
			return nil, err
		}
		words = append(words, word)
	}
	return words, rows.Err()
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
