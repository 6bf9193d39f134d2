package models

import "time"

type UserRole string

const (
	RoleOwner UserRole = "owner" // tüm şubeleri yönetir
	RoleStaff UserRole = "staff" // tek şubeye bağlı personel
)

type User struct {
	ID           uint `gorm:"primaryKey"`
	OutletID     *uint
	Outlet       *Outlet
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
