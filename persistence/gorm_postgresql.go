// persistence/gorm_postgresql.go
package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wfunc/drawguess/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormlogger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := db.AutoMigrate(&models.GormUser{}, &models.GormWord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (g *GormPostgreSQL) ExistUser(account string) (bool, error) {
	var count int64
	err := g.db.Model(&models.GormUser{}).Where("account = ?", account).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateUser inserts a new account inside one transaction so the
// exists-check and the insert cannot race another registration.
func (g *GormPostgreSQL) CreateUser(user *models.GormUser) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.GormUser{}).Where("account = ?", user.Account).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserExists
		}
		return tx.Create(user).Error
	})
}

func (g *GormPostgreSQL) GetUser(account string) (*models.GormUser, error) {
	var user models.GormUser
	err := g.db.Where("account = ?", account).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (g *GormPostgreSQL) RandomWord(level int) (*models.WordHint, error) {
	var word models.GormWord
	query := g.db.Model(&models.GormWord{})
	if level > 0 {
		query = query.Where("level = ?", level)
	}
	err := query.Order("random()").First(&word).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &models.WordHint{Word: word.Word, Hint: word.Hint}, nil
}

func (g *GormPostgreSQL) RandomWords(count int) ([]models.WordHint, error) {
	var words []models.GormWord
	err := g.db.Model(&models.GormWord{}).Order("random()").Limit(count).Find(&words).Error
	if err != nil {
		return nil, err
	}

	result := make([]models.WordHint, 0, len(words))
	for _, w := range words {
		result = append(result, models.WordHint{Word: w.Word, Hint: w.Hint})
	}
	return result, nil
}

func (g *GormPostgreSQL) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
