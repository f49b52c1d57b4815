package registrations

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("registration not found")

	// ErrDuplicateEmail is returned both by the pre-insert lookup and by the
	// store when its unique constraint on email rejects an insert.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Registration is one conference sign-up. Every field except
// ScholarshipNeeded is mandatory.
type Registration struct {
	ID                  string    `json:"id"`
	FirstName           string    `json:"firstName" label:"First name" validate:"notblank"`
	LastName            string    `json:"lastName" label:"Last name" validate:"notblank"`
	MiddleName          string    `json:"middleName" label:"Middle name" validate:"notblank"`
	AgeBracket          string    `json:"ageBracket" label:"Age bracket" validate:"notblank"`
	Email               string    `json:"email" label:"Email" validate:"notblank,email"`
	WhatsAppPhone       string    `json:"whatsappPhone" label:"WhatsApp phone" validate:"notblank,possiblephone"`
	PassportCountry     string    `json:"passportCountry" label:"Passport country" validate:"notblank,country"`
	CountryOfResidence  string    `json:"countryOfResidence" label:"Country of residence" validate:"notblank,country"`
	RegionState         string    `json:"regionState" label:"Region/State" validate:"notblank"`
	Sex                 string    `json:"sex" label:"Sex" validate:"notblank"`
	EducationLevel      string    `json:"educationLevel" label:"Education level" validate:"notblank"`
	CourseOfStudy       string    `json:"courseOfStudy" label:"Course of study" validate:"notblank"`
	Occupation          string    `json:"occupation" label:"Occupation" validate:"notblank"`
	SendingOrganization string    `json:"sendingOrganization" label:"Sending organization" validate:"notblank"`
	ApplicantType       string    `json:"applicantType" label:"Applicant type" validate:"notblank"`
	FirstTimeAttending  string    `json:"firstTimeAttending" label:"First time attending" validate:"notblank"`
	SelfFunding         string    `json:"selfFunding" label:"Self funding" validate:"notblank"`
	ScholarshipNeeded   string    `json:"scholarshipNeeded,omitempty"`
	BelongsToMKGroup    string    `json:"belongsToMKGroup" label:"Belongs to MK group" validate:"notblank"`
	ReferenceInfo       string    `json:"referenceInfo" label:"Reference info" validate:"notblank"`
	RegistrationDate    time.Time `json:"registrationDate"`
}

type Repository interface {
	Create(ctx context.Context, reg Registration) (*Registration, error)
	GetByEmail(ctx context.Context, email string) (*Registration, error)
	List(ctx context.Context) ([]Registration, error)
}
