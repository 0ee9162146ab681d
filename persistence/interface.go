// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/wfunc/drawguess/models"
)

// Store 数据库接口
type Store interface {
	ExistUser(account string) (bool, error)
	CreateUser(user *models.GormUser) error
	GetUser(account string) (*models.GormUser, error)
	RandomWord(level int) (*models.WordHint, error)
	RandomWords(count int) ([]models.WordHint, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
	ErrUserExists     = fmt.Errorf("user account already exists")
)
