// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormUser 用户账户模型
type GormUser struct {
	gorm.Model
	Account  string `gorm:"uniqueIndex;size:255;not null"`
	Name     string `gorm:"size:100;not null"`
	Password string `gorm:"size:50;not null"`
	Sex      int    `gorm:"default:0"`
	PicPath  string `gorm:"size:255"`
	LastIP   string `gorm:"size:64"`
}

// GormWord 词库条目模型
type GormWord struct {
	gorm.Model
	Word  string `gorm:"uniqueIndex;size:100;not null"`
	Hint  string `gorm:"size:255;not null"`
	Level int    `gorm:"index;default:0"`
}
