package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_USER        = "USER"
	ROLE_ADMIN       = "ADMIN"
	ROLE_SUPER_ADMIN = "SUPER_ADMIN"

	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

type User struct {
	ID          uint           `gorm:"primaryKey" json:"-"`
	UUID        string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"_id"`
	Name        string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Email       string         `gorm:"uniqueIndex;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,min=5,max=200"`
	Password    string         `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role        string         `gorm:"type:varchar(50);default:'USER'" json:"role" validate:"oneof=USER ADMIN SUPER_ADMIN"`
	Status      string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active inactive disabled"`
	LastLoginAt *time.Time     `gorm:"type:timestamp;default:null" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(name string, email string, password string) (*User, error) {
	u := &User{
		UUID:   uuid.NewString(),
		Name:   name,
		Email:  email,
		Role:   ROLE_USER,
		Status: STATUS_ACTIVE,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// IsAdmin reports whether the user holds an administrative role.
func (u *User) IsAdmin() bool {
	return u.Role == ROLE_ADMIN || u.Role == ROLE_SUPER_ADMIN
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}
