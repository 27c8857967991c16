// VillageVitals | 2026
// service.go

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/villagevitals/backend/internal/core"
	"github.com/villagevitals/backend/internal/notify"
	"github.com/villagevitals/backend/internal/otp"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("account not verified")
	ErrAlreadyVerified    = errors.New("account already verified")
	ErrEmailExists        = errors.New("email already registered")
	ErrPhoneExists        = errors.New("phone number already registered")
	ErrInvalidOTP         = errors.New("invalid or expired otp code")
	ErrRoleMismatch       = errors.New("role does not match account")
	ErrRoleElevation      = errors.New("admin role requires admin privileges")
	ErrOTPDelivery        = errors.New("failed to send verification email")
)

// dummyHash keeps the not-found path of Login doing a real bcrypt
// comparison so response timing does not reveal account existence.
var dummyHash, _ = core.HashPassword("anonymous")

type Service struct {
	users  Repository
	codes  otp.Repository
	jwt    *JWTManager
	mailer notify.Mailer
	logger *slog.Logger
}

func NewService(
	users Repository,
	codes otp.Repository,
	jwtManager *JWTManager,
	mailer notify.Mailer,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:  users,
		codes:  codes,
		jwt:    jwtManager,
		mailer: mailer,
		logger: logger,
	}
}

// Signup creates an unverified account and issues its first OTP. Mail
// delivery is best effort here: the account and code already exist, so
// the user can recover through resend.
func (s *Service) Signup(
	ctx context.Context,
	req SignupRequest,
) (*User, error) {
	emailTaken, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if emailTaken {
		return nil, ErrEmailExists
	}

	phoneTaken, err := s.users.ExistsByPhone(ctx, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("check phone: %w", err)
	}
	if phoneTaken {
		return nil, ErrPhoneExists
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
		Role:         req.Role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			// Lost a race between the existence checks and the insert;
			// the violated constraint says which field to report.
			if duplicateConstraintColumn(err) == "phone" {
				return nil, ErrPhoneExists
			}
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.issueOTP(ctx, user.Email, user.FirstName); err != nil {
		s.logger.Error("signup otp delivery failed",
			"email", user.Email,
			"error", err,
		)
	}

	return user, nil
}

// ResendOTP issues a fresh code for an unverified account. Unlike
// signup, a delivery failure is surfaced: the caller asked for mail and
// got none, and there is no other outcome to report.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ErrNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}

	if user.IsVerified {
		return ErrAlreadyVerified
	}

	if err := s.issueOTP(ctx, user.Email, user.FirstName); err != nil {
		return fmt.Errorf("%w: %w", ErrOTPDelivery, err)
	}

	return nil
}

func (s *Service) VerifyOTP(
	ctx context.Context,
	email, code string,
) (*User, error) {
	consumed, err := s.codes.Consume(ctx, email, code)
	if err != nil {
		return nil, fmt.Errorf("consume otp: %w", err)
	}
	if !consumed {
		return nil, ErrInvalidOTP
	}

	user, err := s.users.MarkVerified(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}

	if err := s.mailer.SendWelcomeEmail(ctx, user.Email, user.FirstName); err != nil {
		s.logger.Warn("welcome email delivery failed",
			"email", user.Email,
			"error", err,
		)
	}

	return user, nil
}

// Login authenticates by email or phone. Checks run in a fixed order
// so the caller sees the most actionable failure: the unverified
// message before a password mismatch, the password mismatch before a
// role mismatch.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*User, string, error) {
	user, err := s.users.GetByContact(ctx, req.Contact)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.VerifyPassword(req.Password, dummyHash)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if !user.IsVerified {
		return nil, "", ErrNotVerified
	}

	if !core.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	if user.Role != req.Role {
		return nil, "", ErrRoleMismatch
	}

	token, err := s.jwt.CreateSessionToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("create session token: %w", err)
	}

	return user, token, nil
}

// UpdateProfile changes name, phone and role for the authenticated
// user. Switching into the admin role requires the caller's session to
// already carry it; community and health-worker are interchangeable.
func (s *Service) UpdateProfile(
	ctx context.Context,
	userID int64,
	callerRole string,
	req UpdateProfileRequest,
) (*User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if req.Role == RoleAdmin && callerRole != RoleAdmin {
		return nil, ErrRoleElevation
	}

	if req.Phone != user.Phone {
		inUse, err := s.users.PhoneInUse(ctx, req.Phone, user.ID)
		if err != nil {
			return nil, fmt.Errorf("check phone: %w", err)
		}
		if inUse {
			return nil, ErrPhoneExists
		}
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Phone = req.Phone
	user.Role = req.Role

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrPhoneExists
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.users.List(ctx, params)
}

func (s *Service) issueOTP(
	ctx context.Context,
	email, firstName string,
) error {
	code, err := otp.Generate()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	if err := s.codes.Create(ctx, email, code); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if err := s.mailer.SendOTPEmail(ctx, email, code, firstName); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}

	return nil
}
