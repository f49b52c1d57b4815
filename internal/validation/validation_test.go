package validation

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string `json:"name" label:"Name" validate:"notblank,max=10"`
	Email   string `json:"email" validate:"required,contactemail"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,phone"`
	Mobile  string `json:"mobile,omitempty" validate:"omitempty,possiblephone"`
	Country string `json:"country,omitempty" label:"Country" validate:"omitempty,country"`
	Body    string `json:"body" label:"Body" validate:"notblank,min=10"`
}

func validSample() sample {
	return sample{
		Name:  "Ada",
		Email: "ada@example.com",
		Body:  "Hello there, friend",
	}
}

func TestStructValid(t *testing.T) {
	v := New("US")
	require.NoError(t, v.Struct(validSample()))

	s := validSample()
	require.NoError(t, v.Struct(&s))
}

func TestStructCollectsAllViolations(t *testing.T) {
	v := New("US")

	err := v.Struct(sample{Name: "  ", Email: "nope", Body: "short"})

	require.Error(t, err)
	require.True(t, IsValidationError(err))

	var verr *Error
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 3)
	require.Equal(t, map[string]string{
		"name":  "Name is required",
		"email": "Please provide a valid email address",
		"body":  "Body must be at least 10 characters long",
	}, verr.Map())
	require.Equal(t, "Name is required, Please provide a valid email address, Body must be at least 10 characters long", verr.Message())
	require.True(t, strings.HasPrefix(verr.Error(), "validation failed: "))
}

func TestLabelFallsBackToJSONName(t *testing.T) {
	v := New("US")
	s := validSample()
	s.Email = ""

	err := v.Struct(s)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "email is required", verr.Fields[0].Message)
}

func TestContactEmailShape(t *testing.T) {
	v := New("US")
	cases := map[string]bool{
		"ada@example.com":       true,
		"a.b+c@sub.domain.io":   true,
		"ada@example":           false,
		"ada example@x.com":     false,
		"@example.com":          false,
		"ada@@example.com":      false,
		"john..doe@example.com": false,
		"a,b@example.com":       false,
		`a"b@example.com`:       false,
		"a<b@example.com":       false,
		".ada@example.com":      false,
	}
	for email, ok := range cases {
		t.Run(email, func(t *testing.T) {
			s := validSample()
			s.Email = email
			err := v.Struct(s)
			if ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestPhonePattern(t *testing.T) {
	v := New("US")
	for _, phone := range []string{"+1 (555) 123-4567", "0803 123 4567", "5551234"} {
		s := validSample()
		s.Phone = phone
		require.NoError(t, v.Struct(s), phone)
	}
	for _, phone := range []string{"12345", "call me maybe", "+1 555 123 4567 890 1234"} {
		s := validSample()
		s.Phone = phone
		require.Error(t, v.Struct(s), phone)
	}
}

func TestPossiblePhoneUsesDefaultRegion(t *testing.T) {
	s := validSample()
	s.Mobile = "0803 123 4567"

	require.NoError(t, New("NG").Struct(s))

	s.Mobile = "+234 803 123 4567"
	require.NoError(t, New("US").Struct(s))

	s.Mobile = "12"
	require.Error(t, New("US").Struct(s))
}

func TestPossiblePhoneAcceptsForeignNationalFormat(t *testing.T) {
	s := validSample()
	s.Mobile = "08031234567"
	require.NoError(t, New("US").Struct(s))

	s.Mobile = "+1 0803 123 4567 8899"
	require.Error(t, New("US").Struct(s))

	s.Mobile = "call me"
	require.Error(t, New("US").Struct(s))
}

func TestCountry(t *testing.T) {
	v := New("US")
	for _, c := range []string{"Nigeria", "NG", "NGA", "ghana"} {
		s := validSample()
		s.Country = c
		require.NoError(t, v.Struct(s), c)
	}

	s := validSample()
	s.Country = "Atlantis"
	err := v.Struct(s)
	var verr *Error
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "Country must be a recognised country", verr.Fields[0].Message)
}

func TestMaxMessage(t *testing.T) {
	v := New("US")
	s := validSample()
	s.Name = "Bartholomew The Great"

	err := v.Struct(s)
	var verr *Error
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "Name cannot exceed 10 characters", verr.Fields[0].Message)
}

func TestNonStructArgumentIsNotValidationError(t *testing.T) {
	err := New("US").Struct(42)
	require.Error(t, err)
	require.False(t, IsValidationError(err))
	require.False(t, IsValidationError(fmt.Errorf("wrapped: %w", errors.New("x"))))
}
