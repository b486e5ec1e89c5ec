// Package model holds the gorm persistence models. They mirror the database schema
// and never leave the persistence layer.
package model

import "time"

// UserModel mirrors the "user" table created by the migrations in postgres/migrations.
type UserModel struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Email          string    `gorm:"column:email;type:varchar;uniqueIndex:ix_user_email;not null"`
	Password       string    `gorm:"column:password;type:varchar;not null"`
	FirstName      string    `gorm:"column:first_name;type:varchar;not null"`
	LastName       string    `gorm:"column:last_name;type:varchar;not null"`
	AccountCreated time.Time `gorm:"column:account_created;type:timestamp;not null"`
	AccountUpdated time.Time `gorm:"column:account_updated;type:timestamp;not null"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "user"
}
