package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories bundles every repository for dependency wiring.
type Repositories struct {
	Request     *RequestRepository
	User        *UserRepository
	History     *HistoryRepository
	EmailConfig *EmailConfigRepository
}

// NewRepositories creates the repository collection.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Request:     NewRequestRepository(db),
		User:        NewUserRepository(db),
		History:     NewHistoryRepository(db),
		EmailConfig: NewEmailConfigRepository(db),
	}
}
