package storage

import (
	"context"

	"github.com/missionconf/server/internal/domain/contact"
	"github.com/missionconf/server/internal/domain/registrations"
)

// Repository groups data access by domain.
type Repository interface {
	Registrations() registrations.Repository
	Contact() contact.Repository
	Ping(ctx context.Context) error
}
