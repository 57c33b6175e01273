package models

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleStaff    UserRole = "staff"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	SoftDeleteModel
	Name         string   `json:"name" gorm:"not null"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string   `json:"-" gorm:"not null"`
	Role         UserRole `json:"role" gorm:"not null;default:'customer'"`
	Phone        string   `json:"phone"`
	Address      string   `json:"address"`
}

// Staff holds the employment record behind a staff-role user.
type Staff struct {
	SoftDeleteModel
	UserID   uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	User     User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Position string `json:"position"`
	// no column default, a false zero value must survive Create
	IsActive bool `json:"is_active"`
}
