package account

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/todo-1m/webclient/internal/contracts"
	"github.com/todo-1m/webclient/internal/remote"
)

const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
)

const (
	minNameLength     = 3
	minPasswordLength = 3
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldErrors maps a form field to its validation message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return strings.Join(parts, "; ")
}

func (f FieldErrors) orNil() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

// ValidateRegistration checks the register form before any remote call.
func ValidateRegistration(name, email, password string) FieldErrors {
	errs := FieldErrors{}
	switch {
	case name == "":
		errs[FieldName] = "Name is required"
	case len([]rune(strings.TrimSpace(name))) < minNameLength:
		errs[FieldName] = "Name must be at least 3 characters"
	}
	validateEmail(errs, email)
	switch {
	case password == "":
		errs[FieldPassword] = "Password is required"
	case len([]rune(password)) < minPasswordLength:
		errs[FieldPassword] = "Password must be at least 3 characters"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ValidateLogin(email, password string) FieldErrors {
	errs := FieldErrors{}
	validateEmail(errs, email)
	if password == "" {
		errs[FieldPassword] = "Password is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateEmail(errs FieldErrors, email string) {
	switch {
	case email == "":
		errs[FieldEmail] = "Email is required"
	case !emailPattern.MatchString(email):
		errs[FieldEmail] = "Enter a valid email address"
	}
}

// DisplayName picks the first non-empty of name, full name and username.
func DisplayName(u contracts.User) string {
	for _, v := range []string{u.Name, u.FullName, u.Username} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return "-"
}

// Directory is the remote users API.
type Directory interface {
	Register(ctx context.Context, name, email, password string) (contracts.User, error)
	Login(ctx context.Context, email, password string) (contracts.User, error)
	ListUsers(ctx context.Context) ([]contracts.User, error)
}

type Service struct {
	Directory Directory
}

func NewService(directory Directory) *Service {
	return &Service{Directory: directory}
}

// Register validates locally and then creates the account remotely.
// Validation failures are returned as FieldErrors.
func (s *Service) Register(ctx context.Context, name, email, password string) (contracts.User, error) {
	if err := ValidateRegistration(name, email, password).orNil(); err != nil {
		return contracts.User{}, err
	}
	return s.Directory.Register(ctx, name, email, password)
}

func (s *Service) Login(ctx context.Context, email, password string) (contracts.User, error) {
	if err := ValidateLogin(email, password).orNil(); err != nil {
		return contracts.User{}, err
	}
	return s.Directory.Login(ctx, email, password)
}

func (s *Service) Users(ctx context.Context) ([]contracts.User, error) {
	return s.Directory.ListUsers(ctx)
}

// FailureMessage is the single line shown when a remote account call fails.
func FailureMessage(err error, fallback string) string {
	return remote.Message(err, fallback)
}
