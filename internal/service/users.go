package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	applog "foodgram/internal/log"
	"foodgram/internal/metrics"
	"foodgram/internal/store"
	"foodgram/models"
)

// ErrInvalidCredentials is returned when an email and password do not match.
var ErrInvalidCredentials = errors.New("unable to log in with provided credentials")

type SignupInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
}

// Signup creates an account with a bcrypt password hash.
func (s *Service) Signup(ctx context.Context, in SignupInput) (UserView, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	verr := validateStruct(&in)
	if err := verr.orNil(); err != nil {
		return UserView{}, err
	}

	repos := s.store.Read(ctx)
	emailTaken, usernameTaken, err := repos.Users.EmailOrUsernameTaken(in.Email, in.Username)
	if err != nil {
		return UserView{}, err
	}
	if emailTaken {
		verr.add("email", "A user with that email already exists.")
	}
	if usernameTaken {
		verr.add("username", "A user with that username already exists.")
	}
	if err := verr.orNil(); err != nil {
		return UserView{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserView{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
	}
	if err := repos.Users.Create(&user); err != nil {
		if errors.Is(err, store.ErrUniqueViolation) {
			return UserView{}, invalid("email", "A user with that email or username already exists.")
		}
		return UserView{}, err
	}

	metrics.RecordEvent("user_created")
	applog.Info(ctx, "user signed up", "userID", user.ID)
	return toUserView(user, false), nil
}

// Authenticate returns the user matching email and password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (UserView, error) {
	user, err := s.store.Read(ctx).Users.ByEmail(email)
	if errors.Is(err, store.ErrNotFound) {
		return UserView{}, ErrInvalidCredentials
	}
	if err != nil {
		return UserView{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return UserView{}, ErrInvalidCredentials
	}
	return toUserView(user, false), nil
}

// User returns the profile of id as seen by viewer.
func (s *Service) User(ctx context.Context, viewer Actor, id uint) (UserView, error) {
	repos := s.store.Read(ctx)
	user, err := repos.Users.ByID(id)
	if err != nil {
		return UserView{}, translate(err, "user")
	}
	subscribed, err := repos.Subscriptions.Among(viewer.UserID, []uint{id})
	if err != nil {
		return UserView{}, err
	}
	return toUserView(user, subscribed[id]), nil
}

// ListUsers pages through accounts, newest first.
func (s *Service) ListUsers(ctx context.Context, viewer Actor, page PageRequest) (Page[UserView], error) {
	page = s.normalise(page)
	repos := s.store.Read(ctx)

	users, total, err := repos.Users.List(page.Offset, page.Limit)
	if err != nil {
		return Page[UserView]{}, err
	}
	ids := make([]uint, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	subscribed, err := repos.Subscriptions.Among(viewer.UserID, ids)
	if err != nil {
		return Page[UserView]{}, err
	}

	views := make([]UserView, 0, len(users))
	for _, user := range users {
		views = append(views, toUserView(user, subscribed[user.ID]))
	}
	return Page[UserView]{Count: total, Limit: page.Limit, Offset: page.Offset, Results: views}, nil
}

// DeleteAccount removes the actor together with their recipes and every
// association that references them.
func (s *Service) DeleteAccount(ctx context.Context, actor Actor) error {
	if err := actor.require(); err != nil {
		return err
	}
	err := s.store.Tx(ctx, func(tx *store.Repositories) error {
		return tx.Users.Delete(actor.UserID)
	})
	if err != nil {
		return translate(err, "user")
	}
	metrics.RecordEvent("user_deleted")
	applog.Info(ctx, "account deleted", "userID", actor.UserID)
	return nil
}
