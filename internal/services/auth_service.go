package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"olivosverdes/internal/domain"
	"olivosverdes/internal/repos"
	"olivosverdes/internal/validate"
)

var ErrBadCreds = errors.New("invalid email or password")

// ValidationError carries per-field and form-wide messages back to a form.
type ValidationError struct {
	Fields map[string]string
	Global string
}

func (e *ValidationError) Error() string {
	if e.Global != "" {
		return e.Global
	}
	return "invalid form"
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

type Registration struct {
	Name     string
	Email    string
	Password string
	Confirm  string
	Phone    string
	Address  string
	City     string
}

type AuthService struct {
	Users *repos.UserRepo
	Cost  int
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// Register validates the form, creates the user with a profile and logs the
// session in. Form problems come back as *ValidationError.
func (s *AuthService) Register(ctx context.Context, sid string, in Registration) (*domain.User, error) {
	verr := &ValidationError{}
	name, ok := validate.Name(in.Name)
	if !ok {
		verr.add("name", "Name must be 1-20 characters")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		verr.add("email", "Enter a valid email address")
	}
	if !validate.Password(in.Password) {
		verr.add("password", "Password needs 8-20 characters with upper and lower case letters, a digit and a symbol")
	} else if in.Password != in.Confirm {
		verr.add("confirm", "Passwords do not match")
	}
	phone, ok := validate.Phone(in.Phone)
	if !ok {
		verr.add("phone", "Enter a valid phone number")
	}
	address, ok := validate.Text(in.Address, 120)
	if !ok {
		verr.add("address", "Address is required")
	}
	city, ok := validate.Text(in.City, 60)
	if !ok {
		verr.add("city", "City is required")
	}
	if len(verr.Fields) > 0 {
		verr.Global = "Registration failed. Please check the form."
		return nil, verr
	}

	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cost)
	if err != nil {
		return nil, err
	}
	u := domain.User{ID: uuid.NewString(), Email: strings.ToLower(email), Name: name, Hash: string(hash), Role: "USER"}
	err = s.Users.Create(ctx, u, domain.CustomerProfile{UserID: u.ID, Phone: phone, Address: address, City: city})
	if errors.Is(err, repos.ErrEmailTaken) {
		verr.add("email", "That email is already registered")
		verr.Global = "Registration failed. Please check the form."
		return nil, verr
	}
	if err != nil {
		return nil, err
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Users.UnbindSession(ctx, sid)
}

func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	return s.Users.SessionUser(ctx, sid)
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.CustomerProfile, error) {
	return s.Users.Profile(ctx, userID)
}
