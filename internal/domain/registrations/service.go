package registrations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/missionconf/server/internal/validation"
	"github.com/rs/zerolog"
)

type Service struct {
	repo      Repository
	validator *validation.Validator
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, validator *validation.Validator, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		validator: validator,
		logger:    logger.With().Str("component", "registrations").Logger(),
		now:       time.Now,
	}
}

// Register validates and stores a new registration. A registration whose
// email is already taken fails with ErrDuplicateEmail; invalid input fails
// with *validation.Error before the store is touched.
func (s *Service) Register(ctx context.Context, reg Registration) (*Registration, error) {
	reg = normalize(reg)

	if err := s.validator.Struct(reg); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, reg.Email)
	switch {
	case err == nil && existing != nil:
		return nil, ErrDuplicateEmail
	case err != nil && !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("check existing registration: %w", err)
	}

	reg.RegistrationDate = s.now().UTC()

	created, err := s.repo.Create(ctx, reg)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			s.logger.Warn().Str("email", reg.Email).Msg("duplicate registration rejected by store constraint")
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	s.logger.Info().Str("id", created.ID).Msg("registration created")
	return created, nil
}

// ListAll returns every registration. It exists for the export path.
func (s *Service) ListAll(ctx context.Context) ([]Registration, error) {
	regs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// normalize trims surrounding whitespace. Email is compared exactly as
// submitted, so only its outer whitespace is removed.
func normalize(reg Registration) Registration {
	fields := []*string{
		&reg.FirstName, &reg.LastName, &reg.MiddleName, &reg.AgeBracket, &reg.Email,
		&reg.WhatsAppPhone, &reg.PassportCountry, &reg.CountryOfResidence, &reg.RegionState,
		&reg.Sex, &reg.EducationLevel, &reg.CourseOfStudy, &reg.Occupation,
		&reg.SendingOrganization, &reg.ApplicantType, &reg.FirstTimeAttending,
		&reg.SelfFunding, &reg.ScholarshipNeeded, &reg.BelongsToMKGroup, &reg.ReferenceInfo,
	}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
	reg.ID = ""
	return reg
}
