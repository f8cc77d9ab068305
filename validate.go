package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

const (
	// UsernameMinLen and UsernameMaxLen bound the accepted username length
	UsernameMinLen = 3
	UsernameMaxLen = 60
	// PasswordMinLen and PasswordMaxLen bound the accepted password length
	PasswordMinLen = 6
	PasswordMaxLen = 50
)

// SignupRequest is the payload accepted by the signup operation
type SignupRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	Phone    string `form:"phone_number" json:"phone_number,omitempty"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(
				&r.Username,
				validation.Required.Error("username is required"),
				validation.Length(UsernameMinLen, UsernameMaxLen).
					Error("username must be between 3 - 60 characters"),
			),
			validation.Field(
				&r.Email,
				validation.Required.Error("email is required"),
				is.Email.Error("email is invalid"),
			),
			validation.Field(
				&r.Password,
				validation.Required.Error("password is required"),
				validation.Length(PasswordMinLen, PasswordMaxLen).
					Error("password must be between 6 - 50 characters"),
			),
			validation.Field(
				&r.Phone,
				validation.By(validPhone),
			),
		)
	}, "Invalid signup request payload")
}

// SigninRequest is the payload accepted by the signin operation
type SigninRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r SigninRequest) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(
				&r.Email,
				validation.Required.Error("email is required"),
				is.Email.Error("email is invalid"),
			),
			validation.Field(
				&r.Password,
				validation.Required.Error("password is required"),
			),
		)
	}, "Invalid signin request payload")
}

// validatePassword applies the same length rules signup enforces, used
// when a password arrives outside a full request payload.
func validatePassword(password string) *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.Validate(
			password,
			validation.Required.Error("password is required"),
			validation.Length(PasswordMinLen, PasswordMaxLen).
				Error("password must be between 6 - 50 characters"),
		)
	}, "Invalid password")
}

// NormalizePhone parses an optional phone number and returns its E.164
// form. Empty input is passed through untouched.
func NormalizePhone(phone, region string) (string, error) {
	if phone == "" {
		return "", nil
	}

	num, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryValidation, "invalid phone number").
			WithCode(errors.CodeBadRequest)
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", errors.New("invalid phone number", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

func validPhone(value any) error {
	phone, _ := value.(string)
	if phone == "" {
		return nil
	}

	if _, err := NormalizePhone(phone, "US"); err != nil {
		return err
	}

	return nil
}
