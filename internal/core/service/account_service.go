package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adminhub/user-accounts/internal/core/domain"
	"github.com/adminhub/user-accounts/internal/core/ports"
	"github.com/adminhub/user-accounts/internal/core/validation"
	"github.com/adminhub/user-accounts/internal/pkg/metrics"
)

// registrationOwner groups cleanup of images written by registrations that
// never produced a record, so they share one janitor shard.
const registrationOwner = "register"

// AccountService implements the account use cases on top of a UserRepository.
type AccountService struct {
	repo    ports.UserRepository
	hasher  ports.PasswordHasher
	tokens  ports.TokenService
	images  ports.ImageStore
	janitor ports.ImageJanitor
	lock    ports.RegistrationLock
	log     zerolog.Logger
	now     func() time.Time
}

func NewAccountService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	images ports.ImageStore,
	janitor ports.ImageJanitor,
	lock ports.RegistrationLock,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		images:  images,
		janitor: janitor,
		lock:    lock,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Register validates the input, rejects a taken (email, role) pair with an
// AlreadyExists result, and otherwise persists a new account.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegisterResult, error) {
	in.UserName = strings.TrimSpace(in.UserName)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validation.Validate(in); err != nil {
		return nil, err
	}
	role := domain.Role(in.Role)

	// 1. Existing account under this role.
	exists, err := s.exists(ctx, in.Email, role)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		metrics.RegistrationsTotal.WithLabelValues(in.Role, "exists").Inc()
		return &ports.RegisterResult{AlreadyExists: true}, nil
	}

	// 2. Serialise with concurrent registrations of the same pair. A held
	// lock is not proof the account exists, so the caller is told to retry.
	acquired, err := s.lock.Acquire(ctx, in.Email, in.Role)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("role", in.Role).Msg("registration lock unavailable, proceeding without it")
	case !acquired:
		metrics.RegistrationsTotal.WithLabelValues(in.Role, "in_progress").Inc()
		return nil, domain.ErrRegistrationInProgress
	default:
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), in.Email, in.Role); err != nil {
				s.log.Warn().Err(err).Str("role", in.Role).Msg("failed to release registration lock")
			}
		}()
	}

	// 3. Hash and store uploads.
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	var phone int64
	if in.Phone != "" {
		phone, _ = strconv.ParseInt(in.Phone, 10, 64)
	}

	urls, err := s.saveImages(ctx, in.Images)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	// 4. Persist. The store's unique (email, role) index is authoritative.
	now := s.now()
	created, err := s.repo.Insert(ctx, &domain.User{
		UserName:     in.UserName,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        phone,
		Role:         role,
		Images:       urls,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		s.janitor.Discard(registrationOwner, urls)
		if errors.Is(err, domain.ErrUserExists) {
			metrics.RegistrationsTotal.WithLabelValues(in.Role, "exists").Inc()
			return &ports.RegisterResult{AlreadyExists: true}, nil
		}
		metrics.RegistrationsTotal.WithLabelValues(in.Role, "error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues(in.Role, "created").Inc()
	s.log.Info().Str("user_id", created.ID).Str("role", in.Role).Int("images", len(urls)).Msg("account registered")

	return &ports.RegisterResult{User: created}, nil
}

// Login verifies credentials for (email, role) and issues a session token.
func (s *AccountService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByEmailAndRole(ctx, in.Email, domain.Role(in.Role))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("unknown_account").Inc()
			return nil, domain.ErrEmailNotFound
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, in.Password) {
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		return nil, domain.ErrIncorrectPassword
	}

	token, err := s.tokens.Issue(domain.Claims{UserID: user.ID, UserName: user.UserName})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &ports.LoginResult{Token: token, User: user}, nil
}

// UpdateProfile changes only the supplied fields. A new image replaces the
// whole image list; the replaced files are handed to the janitor.
func (s *AccountService) UpdateProfile(ctx context.Context, in ports.UpdateProfileInput) (*domain.User, error) {
	update := domain.UserUpdate{UpdatedAt: s.now()}

	if name := strings.TrimSpace(in.UserName); name != "" {
		update.UserName = &name
	}
	if raw := strings.TrimSpace(in.Phone); raw != "" {
		phone, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, domain.Invalid("Phone number must be a number.")
		}
		update.Phone = &phone
	}

	if in.Image != nil {
		if err := validation.Validate(*in.Image); err != nil {
			return nil, err
		}
		url, err := s.images.Save(ctx, *in.Image)
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		update.Images = []string{url}
	}

	// The swap is atomic in the store, so previous holds exactly the images
	// this update replaced even when updates race.
	previous, updated, err := s.repo.UpdateByID(ctx, in.UserID, update)
	if err != nil {
		s.janitor.Discard(in.UserID, update.Images)
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if update.Images != nil {
		s.janitor.Discard(in.UserID, previous.Images)
	}
	return updated, nil
}

// ChangePassword replaces the stored hash after checking the confirmation and
// the current password.
func (s *AccountService) ChangePassword(ctx context.Context, in ports.ChangePasswordInput) error {
	if err := validation.Validate(in); err != nil {
		return err
	}
	if in.NewPassword != in.ConfirmPassword {
		metrics.PasswordChangesTotal.WithLabelValues("confirmation_mismatch").Inc()
		return domain.ErrPasswordConfirmation
	}

	user, err := s.repo.FindByID(ctx, in.UserID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !s.hasher.Verify(user.PasswordHash, in.OldPassword) {
		metrics.PasswordChangesTotal.WithLabelValues("old_password_mismatch").Inc()
		return domain.ErrOldPasswordMismatch
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if _, _, err := s.repo.UpdateByID(ctx, in.UserID, domain.UserUpdate{PasswordHash: &hash, UpdatedAt: s.now()}); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	metrics.PasswordChangesTotal.WithLabelValues("changed").Inc()
	s.log.Info().Str("user_id", in.UserID).Msg("password changed")
	return nil
}

// GetUserDetails returns the caller's own record under the given role.
func (s *AccountService) GetUserDetails(ctx context.Context, userID, roleName string) (*domain.User, error) {
	role, err := domain.ParseRole(roleName)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByIDAndRole(ctx, userID, role)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrIdentityRoleMismatch
		}
		return nil, fmt.Errorf("get user details: %w", err)
	}
	return user, nil
}

// RemoveUser deletes the caller's own record under the given role.
func (s *AccountService) RemoveUser(ctx context.Context, userID, roleName string) error {
	role, err := domain.ParseRole(roleName)
	if err != nil {
		return err
	}

	user, err := s.repo.FindByIDAndRole(ctx, userID, role)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrRemoveTargetNotFound
		}
		return fmt.Errorf("remove user: %w", err)
	}

	if err := s.repo.DeleteByIDAndRole(ctx, userID, role); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrRemoveTargetNotFound
		}
		return fmt.Errorf("remove user: %w", err)
	}

	s.janitor.Discard(user.ID, user.Images)
	metrics.AccountsRemovedTotal.WithLabelValues(string(role)).Inc()
	s.log.Info().Str("user_id", userID).Str("role", string(role)).Msg("account removed")
	return nil
}

func (s *AccountService) exists(ctx context.Context, email string, role domain.Role) (bool, error) {
	_, err := s.repo.FindByEmailAndRole(ctx, email, role)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

// saveImages stores every upload, discarding the ones already written if a
// later one fails.
func (s *AccountService) saveImages(ctx context.Context, uploads []ports.ImageUpload) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, up := range uploads {
		url, err := s.images.Save(ctx, up)
		if err != nil {
			s.janitor.Discard(registrationOwner, urls)
			return nil, fmt.Errorf("save image %q: %w", up.Filename, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
