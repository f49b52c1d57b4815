package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/missionconf/server/internal/domain/ids"
	"github.com/missionconf/server/internal/domain/registrations"
	"github.com/missionconf/server/internal/metrics"
)

var _ registrations.Repository = (*RegistrationRepository)(nil)

const registrationsEmailKey = "registrations_email_key"

type RegistrationRepository struct {
	pool *pgxpool.Pool
}

const registrationColumns = `id, first_name, last_name, middle_name, age_bracket, email, whatsapp_phone,
       passport_country, country_of_residence, region_state, sex, education_level,
       course_of_study, occupation, sending_organization, applicant_type,
       first_time_attending, self_funding, scholarship_needed, belongs_to_mk_group,
       reference_info, registration_date`

func (r *RegistrationRepository) Create(ctx context.Context, reg registrations.Registration) (_ *registrations.Registration, err error) {
	defer func(start time.Time) { metrics.RecordQuery("insert_registration", start, err) }(time.Now())

	id, err := ids.NewULID()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}
	if reg.RegistrationDate.IsZero() {
		reg.RegistrationDate = time.Now().UTC()
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO registrations (`+registrationColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
RETURNING `+registrationColumns,
		id,
		reg.FirstName,
		reg.LastName,
		reg.MiddleName,
		reg.AgeBracket,
		reg.Email,
		reg.WhatsAppPhone,
		reg.PassportCountry,
		reg.CountryOfResidence,
		reg.RegionState,
		reg.Sex,
		reg.EducationLevel,
		reg.CourseOfStudy,
		reg.Occupation,
		reg.SendingOrganization,
		reg.ApplicantType,
		reg.FirstTimeAttending,
		reg.SelfFunding,
		nullableString(reg.ScholarshipNeeded),
		reg.BelongsToMKGroup,
		reg.ReferenceInfo,
		reg.RegistrationDate,
	)

	created, err := scanRegistration(row)
	if err != nil {
		if isUniqueViolation(err, registrationsEmailKey) {
			return nil, registrations.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	return created, nil
}

func (r *RegistrationRepository) GetByEmail(ctx context.Context, email string) (_ *registrations.Registration, err error) {
	defer func(start time.Time) {
		if errors.Is(err, registrations.ErrNotFound) {
			metrics.RecordQuery("select_registration_by_email", start, nil)
			return
		}
		metrics.RecordQuery("select_registration_by_email", start, err)
	}(time.Now())

	row := r.pool.QueryRow(ctx, `
SELECT `+registrationColumns+`
  FROM registrations
 WHERE email = $1
 LIMIT 1
`, email)

	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registrations.ErrNotFound
		}
		return nil, fmt.Errorf("get registration by email: %w", err)
	}
	return reg, nil
}

func (r *RegistrationRepository) List(ctx context.Context) (_ []registrations.Registration, err error) {
	defer func(start time.Time) { metrics.RecordQuery("list_registrations", start, err) }(time.Now())

	rows, err := r.pool.Query(ctx, `
SELECT `+registrationColumns+`
  FROM registrations
 ORDER BY registration_date, id
`)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []registrations.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return out, nil
}

func scanRegistration(row pgx.Row) (*registrations.Registration, error) {
	var (
		reg         registrations.Registration
		scholarship *string
	)
	if err := row.Scan(
		&reg.ID,
		&reg.FirstName,
		&reg.LastName,
		&reg.MiddleName,
		&reg.AgeBracket,
		&reg.Email,
		&reg.WhatsAppPhone,
		&reg.PassportCountry,
		&reg.CountryOfResidence,
		&reg.RegionState,
		&reg.Sex,
		&reg.EducationLevel,
		&reg.CourseOfStudy,
		&reg.Occupation,
		&reg.SendingOrganization,
		&reg.ApplicantType,
		&reg.FirstTimeAttending,
		&reg.SelfFunding,
		&scholarship,
		&reg.BelongsToMKGroup,
		&reg.ReferenceInfo,
		&reg.RegistrationDate,
	); err != nil {
		return nil, err
	}
	reg.ScholarshipNeeded = derefString(scholarship)
	reg.RegistrationDate = reg.RegistrationDate.UTC()
	return &reg, nil
}
