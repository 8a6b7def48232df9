package model

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Email    string   `gorm:"size:255;uniqueIndex" json:"email"`
	Password string   `gorm:"size:255" json:"-"`
	Name     string   `gorm:"size:100" json:"name"`
	Role     UserRole `gorm:"size:20;default:'student'" json:"role"`
}

func (User) TableName() string {
	return "users"
}
