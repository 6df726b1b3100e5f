// Package users implements registration and profile upkeep. Every field is
// updated independently through partial upserts, so commands can arrive in
// any order and an unspecified field never clobbers a stored one.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/jcmexdev/pizzaflow/internal/catalog"
	"github.com/jcmexdev/pizzaflow/internal/domain"
	"github.com/jcmexdev/pizzaflow/internal/store"
)

var (
	ErrNameEmpty      = errors.New("name must not be empty")
	ErrNameDigits     = errors.New("name must not contain digits")
	ErrNameSymbols    = errors.New("name may only contain letters, spaces and hyphens")
	ErrAgeNotPositive = errors.New("age must be a positive integer")
	ErrAddressEmpty   = errors.New("address must not be empty")
)

// AgeVerdict classifies a stored age against the access rules.
type AgeVerdict string

const (
	// AgeUnderage blocks access to adult sections for users under 18.
	AgeUnderage AgeVerdict = "underage"
	// AgeOverLimit marks ages above 100.
	AgeOverLimit AgeVerdict = "over_limit"
	// AgeOK means registration can proceed normally.
	AgeOK AgeVerdict = "ok"
)

type Service struct {
	store   store.Store
	catalog catalog.Provider
}

func NewService(st store.Store, cat catalog.Provider) *Service {
	return &Service{store: st, catalog: cat}
}

// Register creates or refreshes the user record from the caller-supplied
// identity. Registering twice is harmless.
func (s *Service) Register(ctx context.Context, id, username, firstName string) error {
	patch := domain.UserPatch{Username: &username, FirstName: &firstName}
	if err := s.store.UpsertUser(ctx, id, patch); err != nil {
		return fmt.Errorf("users: register %q: %w", id, err)
	}
	slog.InfoContext(ctx, "user registered", "user_id", id)
	return nil
}

// SetName validates and stores the user's legal name. Only letters, spaces
// and hyphens are accepted.
func (s *Service) SetName(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return err
	}
	patch := domain.UserPatch{RealName: &name}
	if err := s.store.UpsertUser(ctx, id, patch); err != nil {
		return fmt.Errorf("users: set name for %q: %w", id, err)
	}
	return nil
}

// SetAge stores a positive age and returns the access verdict for it. The age
// is persisted regardless of the verdict; the verdict only drives messaging.
func (s *Service) SetAge(ctx context.Context, id string, age int) (AgeVerdict, error) {
	if age <= 0 {
		return "", ErrAgeNotPositive
	}
	patch := domain.UserPatch{Age: &age}
	if err := s.store.UpsertUser(ctx, id, patch); err != nil {
		return "", fmt.Errorf("users: set age for %q: %w", id, err)
	}
	return CheckAge(age), nil
}

// SetAddress stores the free-text delivery address ("City, Street, No").
func (s *Service) SetAddress(ctx context.Context, id, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrAddressEmpty
	}
	patch := domain.UserPatch{Address: &address}
	if err := s.store.UpsertUser(ctx, id, patch); err != nil {
		return fmt.Errorf("users: set address for %q: %w", id, err)
	}
	return nil
}

// Get loads the user's profile. Returns store.ErrUserNotFound when absent.
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// StoresNear lists stores in the user's city, falling back to all stores when
// the city is unknown or matches nothing.
func (s *Service) StoresNear(ctx context.Context, id string) ([]catalog.Store, error) {
	stores, err := s.catalog.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("users: stores near %q: %w", id, err)
	}

	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, store.ErrUserNotFound) {
		return stores, nil
	}
	if err != nil {
		return nil, fmt.Errorf("users: stores near %q: %w", id, err)
	}
	return catalog.FilterByCity(stores, u.City()), nil
}

// ValidateName applies the name rules: non-empty, no digits, and only
// letters, spaces and hyphens.
func ValidateName(name string) error {
	if name == "" {
		return ErrNameEmpty
	}
	for _, r := range name {
		switch {
		case unicode.IsDigit(r):
			return ErrNameDigits
		case unicode.IsLetter(r), r == ' ', r == '-':
		default:
			return ErrNameSymbols
		}
	}
	return nil
}

// CheckAge maps an age onto its access verdict: under 18 is blocked from
// adult sections, over 100 is redirected, everything in between is fine.
func CheckAge(age int) AgeVerdict {
	switch {
	case age < 18:
		return AgeUnderage
	case age > 100:
		return AgeOverLimit
	default:
		return AgeOK
	}
}
