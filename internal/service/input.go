package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sakif/watchlist/internal/apperror"
	"github.com/sakif/watchlist/internal/auth"
)

// Field limits. Lengths are counted in characters (runes), not bytes, after
// surrounding white space is trimmed.
const (
	MaxUsernameLength = 20
	MaxNameLength     = 20
	MaxTitleLength    = 60
	MaxYearLength     = 4
)

// User-facing notices. Handlers show AppError messages verbatim, so these
// double as the flash text.
const (
	MsgInvalidInput       = "Invalid input."
	MsgPasswordMismatch   = "Password must equal to confirm password."
	MsgUsernameTaken      = "Username already exists."
	MsgInvalidCredentials = "Invalid username or password."
)

var msgPasswordTooLong = fmt.Sprintf("Password must be %d bytes or fewer.", auth.MaxPasswordBytes)

// Every form the app accepts is decoded into one of the payloads below and
// validated before a service touches storage. Validate trims the fields in
// place, so after a nil return the payload holds exactly what will be saved.

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Username        string
	Password        string
	ConfirmPassword string
}

// Validate checks the sign-up form. Passwords are compared and stored
// exactly as typed; only the username is trimmed.
func (in *RegisterInput) Validate() error {
	in.Username = strings.TrimSpace(in.Username)

	if in.Username == "" || in.Password == "" || in.ConfirmPassword == "" {
		return apperror.ValidationFailed("", MsgInvalidInput)
	}
	if in.Password != in.ConfirmPassword {
		return apperror.ValidationFailed("confirm_password", MsgPasswordMismatch)
	}
	if utf8.RuneCountInString(in.Username) > MaxUsernameLength {
		return apperror.ValidationFailed("username", MsgInvalidInput)
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return apperror.ValidationFailed("password", msgPasswordTooLong)
	}
	return nil
}

// LoginInput is the sign-in form.
type LoginInput struct {
	Username string
	Password string
}

// Validate only rejects empty fields. Everything else is a credential
// problem and gets the generic login failure.
func (in *LoginInput) Validate() error {
	in.Username = strings.TrimSpace(in.Username)

	if in.Username == "" || in.Password == "" {
		return apperror.ValidationFailed("", MsgInvalidInput)
	}
	return nil
}

// MovieInput is the add and edit form.
type MovieInput struct {
	Title string
	Year  string
}

// ValidateAdd checks a new entry: a title of 1-60 characters and a year of
// 1-4 characters.
func (in *MovieInput) ValidateAdd() error {
	return in.validate(1)
}

// ValidateEdit is stricter about the year, which must be exactly 4
// characters.
func (in *MovieInput) ValidateEdit() error {
	return in.validate(MaxYearLength)
}

func (in *MovieInput) validate(minYear int) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Year = strings.TrimSpace(in.Year)

	titleLen := utf8.RuneCountInString(in.Title)
	if titleLen == 0 || titleLen > MaxTitleLength {
		return apperror.ValidationFailed("title", MsgInvalidInput)
	}
	yearLen := utf8.RuneCountInString(in.Year)
	if yearLen < minYear || yearLen > MaxYearLength {
		return apperror.ValidationFailed("year", MsgInvalidInput)
	}
	return nil
}

// SettingsInput is the settings form.
type SettingsInput struct {
	Name string
}

// Validate requires a display name of 1-20 characters.
func (in *SettingsInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)

	n := utf8.RuneCountInString(in.Name)
	if n == 0 || n > MaxNameLength {
		return apperror.ValidationFailed("name", MsgInvalidInput)
	}
	return nil
}

// AccountInput describes an account created outside the web forms, by the
// admin and forge commands. An existing account keeps its ID and movies and
// has its password replaced.
type AccountInput struct {
	Username string
	Name     string
	Password string
}

// Validate applies the registration limits plus the display-name limit.
func (in *AccountInput) Validate() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)

	if in.Username == "" || in.Password == "" {
		return apperror.ValidationFailed("", MsgInvalidInput)
	}
	if utf8.RuneCountInString(in.Username) > MaxUsernameLength {
		return apperror.ValidationFailed("username",
			fmt.Sprintf("Username must be %d characters or fewer.", MaxUsernameLength))
	}
	if utf8.RuneCountInString(in.Name) > MaxNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("Name must be %d characters or fewer.", MaxNameLength))
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return apperror.ValidationFailed("password", msgPasswordTooLong)
	}
	return nil
}
