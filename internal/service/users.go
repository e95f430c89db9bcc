package service

import (
	"context"
	"errors"

	"eventhub/internal/clock"
	apperrors "eventhub/internal/errors"
	"eventhub/internal/logger"
	"eventhub/internal/models"
	"eventhub/internal/repository"
)

const invalidCredentials = "invalid email or password"

type UserService struct {
	users     UserStore
	tickets   TicketStore
	hasher    PasswordHasher
	tokens    TokenIssuer
	clock     clock.Clock
	publisher Publisher
}

func NewUserService(stores Stores, hasher PasswordHasher, tokens TokenIssuer, clk clock.Clock, publisher Publisher) *UserService {
	return &UserService{
		users:     stores.Users,
		tickets:   stores.Tickets,
		hasher:    hasher,
		tokens:    tokens,
		clock:     clk,
		publisher: publisher,
	}
}

// Register creates an Attendee account and signs the user in.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.create(ctx, req.Name, req.Email, req.Password, models.RoleAttendee)
	if err != nil {
		return nil, err
	}
	return s.authResponse(user)
}

func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, models.NormalizeEmail(req.Email))
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if user == nil || !s.hasher.Verify(user.PasswordHash, req.Password) {
		logger.WithContext(ctx).Warn("Failed login attempt")
		return nil, apperrors.Unauthenticated(invalidCredentials)
	}
	return s.authResponse(user)
}

// CreateUserByAdmin lets an administrator create an account with any role.
func (s *UserService) CreateUserByAdmin(ctx context.Context, adminID int64, req models.AdminCreateUserRequest) (*models.UserResponse, error) {
	admin, err := s.users.GetByID(ctx, adminID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if admin == nil || admin.Role != models.RoleAdmin {
		return nil, apperrors.Unauthorized("create users")
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.create(ctx, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return nil, err
	}
	resp := models.NewUserResponse(user)
	return &resp, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user", id)
	}
	resp := models.NewUserResponse(user)
	return &resp, nil
}

func (s *UserService) UsersByRole(ctx context.Context, role models.Role) ([]models.UserResponse, error) {
	if !role.Valid() {
		return nil, apperrors.Invalid("role", "must be Admin or Attendee")
	}
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	out := make([]models.UserResponse, len(users))
	for i := range users {
		out[i] = models.NewUserResponse(&users[i])
	}
	return out, nil
}

// DeleteUser refuses while the user holds tickets.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return apperrors.Storage(err)
	}
	if user == nil {
		return apperrors.NotFound("user", id)
	}

	held, err := s.tickets.CountByUser(ctx, id)
	if err != nil {
		return apperrors.Storage(err)
	}
	if held > 0 {
		return apperrors.Conflict("user %d holds %d tickets", id, held)
	}

	ok, err := s.users.Delete(ctx, id)
	if errors.Is(err, repository.ErrForeignKey) {
		return apperrors.Conflict("user %d holds tickets", id)
	}
	if err != nil {
		return apperrors.Storage(err)
	}
	if !ok {
		return apperrors.NotFound("user", id)
	}
	return nil
}

func (s *UserService) create(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("email is already registered")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperrors.Conflict("email is already registered")
		}
		return nil, apperrors.Storage(err)
	}

	logger.WithContext(ctx).Info("User created", "user_id", user.ID, "role", user.Role)
	publish(ctx, s.publisher, models.SubjectUserRegistered, models.UserRegisteredEvent{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Timestamp: user.CreatedAt,
	})
	return user, nil
}

func (s *UserService) authResponse(user *models.User) (*models.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return &models.AuthResponse{
		Token:      token,
		Expiration: expiresAt,
		User:       models.NewUserResponse(user),
	}, nil
}
