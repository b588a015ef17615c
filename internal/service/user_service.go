package service

import (
	"context"
	"fmt"

	dom "github.com/kriskris-27/the-dev-ops-mern/internal/domain"
	"github.com/kriskris-27/the-dev-ops-mern/internal/repo"
	"github.com/kriskris-27/the-dev-ops-mern/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

// UserService is the user half of the relational store.
type UserService struct {
	repo repo.UserRepo
	cost int
}

// NewUserService returns a new UserService. cost <= 0 means bcrypt.DefaultCost.
func NewUserService(repo repo.UserRepo, cost int) *UserService {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserService{repo: repo, cost: cost}
}

func (s *UserService) List(ctx context.Context) ([]dom.User, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return list, nil
}

func (s *UserService) Get(ctx context.Context, id string) (dom.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.User{}, userErr("get user", err)
	}
	return u, nil
}

// Create hashes the password and stores the user.
func (s *UserService) Create(ctx context.Context, d dom.UserDraft) (dom.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(d.Password), s.cost)
	if err != nil {
		return dom.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.repo.Create(ctx, dom.User{
		Name:         d.Name,
		Email:        d.Email,
		Role:         d.Role,
		PasswordHash: string(hash),
	})
	if err != nil {
		return dom.User{}, userErr("create user", err)
	}
	return u, nil
}

// Update applies a partial update; a new password is rehashed.
func (s *UserService) Update(ctx context.Context, id string, ch dom.UserChanges) (dom.User, error) {
	patch := dom.UserPatch{Name: ch.Name, Email: ch.Email, Role: ch.Role}
	if ch.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*ch.Password), s.cost)
		if err != nil {
			return dom.User{}, fmt.Errorf("hash password: %w", err)
		}
		h := string(hash)
		patch.PasswordHash = &h
	}
	u, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return dom.User{}, userErr("update user", err)
	}
	return u, nil
}

// Delete removes the user without touching tasks that reference it.
func (s *UserService) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if !ok {
		return dom.NotFound("User")
	}
	return nil
}

func userErr(op string, err error) error {
	switch {
	case utils.IsNoRows(err):
		return dom.NotFound("User")
	case utils.IsPGUniqueViolation(err):
		return dom.ErrEmailTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}
