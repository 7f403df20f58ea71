package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ceitask/taskboard/internal/domain/entity"
	"github.com/ceitask/taskboard/internal/domain/repository"
	"github.com/ceitask/taskboard/internal/infrastructure/storage"
	"github.com/ceitask/taskboard/pkg/helpers"
	"github.com/ceitask/taskboard/pkg/mailer"
)

var (
	ErrBotCheckFailed     = errors.New("bot check failed")
	ErrUsernameTaken      = errors.New("username taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// BotChecker validates a client-supplied bot-check token. Implementations
// never fail past this boundary; any failure reads as false.
type BotChecker interface {
	Verify(ctx context.Context, token, remoteIP string) bool
}

// ImageUpload is an uploaded profile image payload.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// AuthService orchestrates registration, local login and federated login.
// It is the only component that touches password hashes.
type AuthService struct {
	Repo     repository.UserRepository
	JWT      *helpers.JWTManager
	BotCheck BotChecker
	Images   storage.ImageStore
	Redis    *redis.Client
	Logger   *logrus.Logger

	// Signup notification pipeline; optional. NotifyEmail receives a short
	// note whenever an account is created (users carry no email address of
	// their own).
	Pub             *helpers.RabbitPublisher
	NotifyEmail     string
	MailSendEnabled bool
}

func NewAuthService(repo repository.UserRepository, jwt *helpers.JWTManager, botCheck BotChecker, images storage.ImageStore, rdb *redis.Client, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Repo:     repo,
		JWT:      jwt,
		BotCheck: botCheck,
		Images:   images,
		Redis:    rdb,
		Logger:   logger,
	}
}

func sessionKey(username string) string {
	return "user:session:" + username
}

type RegisterInput struct {
	FullName     string
	Username     string
	Password     string
	CaptchaToken string
	RemoteIP     string
	Image        *ImageUpload
}

// Register creates a credential account. It does not issue a token; the
// client logs in afterwards.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	if !s.BotCheck.Verify(ctx, in.CaptchaToken, in.RemoteIP) {
		return ErrBotCheckFailed
	}

	profileImage := ""
	if in.Image != nil {
		ref, err := s.Images.Save(ctx, in.Image.Reader, in.Image.Filename, in.Image.ContentType)
		if err != nil {
			return fmt.Errorf("store profile image: %w", err)
		}
		profileImage = ref
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{
		Username:     in.Username,
		FullName:     in.FullName,
		PasswordHash: hash,
		ProfileImage: profileImage,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrUsernameTaken
		}
		return err
	}

	s.Logger.WithField("username", u.Username).Info("user registered")
	s.notifySignup(ctx, u, "credentials")
	return nil
}

type LoginInput struct {
	Username     string
	Password     string
	CaptchaToken string
	RemoteIP     string
}

// Login validates credentials and issues a signed session token binding the
// username.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*entity.User, string, error) {
	if !s.BotCheck.Verify(ctx, in.CaptchaToken, in.RemoteIP) {
		return nil, "", ErrBotCheckFailed
	}

	u, err := s.Repo.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, in.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, exp, err := s.issueToken(ctx, u)
	if err != nil {
		return nil, "", err
	}
	s.Logger.WithFields(logrus.Fields{"username": u.Username, "expires_at": exp}).Info("login")
	return u, token, nil
}

type GoogleLoginInput struct {
	Username     string
	FullName     string
	GoogleID     string
	ProfileImage string
}

// GoogleLogin looks up the account by federated identity, creating it on
// first sign-in. No bot-check runs on this path; the upstream identity
// assertion is trusted transitively.
func (s *AuthService) GoogleLogin(ctx context.Context, in GoogleLoginInput) (*entity.User, string, error) {
	u, err := s.Repo.GetByGoogleID(ctx, in.GoogleID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	if u == nil {
		u = &entity.User{
			Username:     in.Username,
			FullName:     in.FullName,
			GoogleID:     in.GoogleID,
			ProfileImage: in.ProfileImage,
		}
		if err := s.Repo.Create(ctx, u); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				// Lost a race with a concurrent first sign-in for the same
				// identity; the winner's row is the account.
				if existing, lookupErr := s.Repo.GetByGoogleID(ctx, in.GoogleID); lookupErr == nil {
					u = existing
				} else {
					return nil, "", err
				}
			} else {
				return nil, "", err
			}
		} else {
			s.Logger.WithField("username", u.Username).Info("federated user created")
			s.notifySignup(ctx, u, "google")
		}
	}

	token, _, err := s.issueToken(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// UpdateProfileImage stores the new image and overwrites the user's
// reference. The caller is trusted to own the username unless the auth
// middleware is enforced upstream.
func (s *AuthService) UpdateProfileImage(ctx context.Context, username string, img ImageUpload) (string, error) {
	ref, err := s.Images.Save(ctx, img.Reader, img.Filename, img.ContentType)
	if err != nil {
		return "", fmt.Errorf("store profile image: %w", err)
	}
	if err := s.Repo.UpdateProfileImage(ctx, username, ref); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return ref, nil
}

func (s *AuthService) issueToken(ctx context.Context, u *entity.User) (string, time.Time, error) {
	token, exp, err := s.JWT.GenerateToken(u.Username)
	if err != nil {
		s.Logger.WithError(err).WithField("username", u.Username).Error("generate token failed")
		return "", time.Time{}, err
	}

	// Best-effort session record; auth does not depend on it.
	if s.Redis != nil {
		key := sessionKey(u.Username)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"username":      u.Username,
			"full_name":     u.FullName,
			"profile_image": u.ProfileImage,
			"logged_in":     true,
			"created_at":    time.Now().UTC().Format(time.RFC3339Nano),
		})
		pipe.Expire(ctx, key, time.Until(exp))
		if _, err := pipe.Exec(ctx); err != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return token, exp, nil
}

func (s *AuthService) notifySignup(ctx context.Context, u *entity.User, via string) {
	if s.Pub == nil || !s.MailSendEnabled || s.NotifyEmail == "" {
		return
	}
	job := mailer.EmailJob{
		To:      s.NotifyEmail,
		Subject: "New taskboard registration",
		Text:    fmt.Sprintf("%s (%s) registered via %s.", u.Username, u.FullName, via),
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).Warn("signup notification enqueue failed")
	}
}
