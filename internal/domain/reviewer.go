package domain

// Reviewer Model
type Reviewer struct {
	ID       uint   `gorm:"primaryKey"`       // Primary key
	Username string `gorm:"unique;not null"`  // Unique username
	Password string `gorm:"not null"`         // Hashed password
	Role     string `gorm:"default:reviewer"` // Role: reviewer or admin
}
