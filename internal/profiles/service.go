package profiles

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fooddealsberlin/backend/pkg/db"
	"github.com/fooddealsberlin/backend/pkg/db/models"
	"github.com/fooddealsberlin/backend/pkg/enums"
	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
	"github.com/fooddealsberlin/backend/pkg/logger"
)

// ServiceParams groups dependencies for the profile service.
type ServiceParams struct {
	ProfileRepo *Repository
	Logger      *logger.Logger
}

// Service exposes business rules for profiles and progression.
type Service interface {
	GetProfile(ctx context.Context, id uuid.UUID) (PublicProfileDTO, error)
	EnsureProfile(ctx context.Context, userID uuid.UUID, username string) (ProfileDTO, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (ProfileDTO, error)
	ListMyBadges(ctx context.Context, userID uuid.UUID) ([]UserBadgeDTO, error)
	RecordDealPosted(ctx context.Context, userID uuid.UUID, moneySaved decimal.Decimal) error
}

type service struct {
	profileRepo *Repository
	logg        *logger.Logger
}

// NewService builds a profile service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ProfileRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile repo is required")
	}
	if params.Logger == nil {
		params.Logger = logger.New(logger.Options{})
	}
	return &service{profileRepo: params.ProfileRepo, logg: params.Logger}, nil
}

// GetProfile returns the public view of any profile.
func (s *service) GetProfile(ctx context.Context, id uuid.UUID) (PublicProfileDTO, error) {
	if id == uuid.Nil {
		return PublicProfileDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PublicProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "profile not found")
		}
		return PublicProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return NewPublicProfileDTO(profile), nil
}

// EnsureProfile returns the caller's profile, creating the row on first
// contact. The auth provider owns identity; the row here is keyed by its
// subject and seeded with the token's username.
func (s *service) EnsureProfile(ctx context.Context, userID uuid.UUID, username string) (ProfileDTO, error) {
	if userID == uuid.Nil {
		return ProfileDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err == nil {
		return NewProfileDTO(profile), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	seeded := &models.Profile{
		ID:                 userID,
		Username:           seedUsername(userID, username),
		LanguagePreference: enums.LanguageEnglish,
		Level:              1,
	}
	created, err := s.profileRepo.Create(ctx, seeded)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			// Lost a race with a concurrent first request; the winner's row
			// is the profile.
			if existing, findErr := s.profileRepo.FindByID(ctx, userID); findErr == nil {
				return NewProfileDTO(existing), nil
			}
		}
		return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
	}
	return NewProfileDTO(created), nil
}

// UpdateMe applies profile edits for the caller.
func (s *service) UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (ProfileDTO, error) {
	if userID == uuid.Nil {
		return ProfileDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "profile not found")
		}
		return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	if input.Username != nil {
		profile.Username = strings.TrimSpace(*input.Username)
	}
	if input.AvatarURL != nil {
		profile.AvatarURL = input.AvatarURL
	}
	if input.LanguagePreference != nil {
		language, err := enums.ParseLanguage(*input.LanguagePreference)
		if err != nil {
			return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid language preference")
		}
		profile.LanguagePreference = language
	}

	updated, err := s.profileRepo.Update(ctx, profile)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "username is taken")
		}
		return ProfileDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return NewProfileDTO(updated), nil
}

// ListMyBadges returns the caller's unlocked badges.
func (s *service) ListMyBadges(ctx context.Context, userID uuid.UUID) ([]UserBadgeDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	earned, err := s.profileRepo.ListUserBadges(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list badges")
	}
	out := make([]UserBadgeDTO, 0, len(earned))
	for i := range earned {
		if earned[i].Badge == nil {
			continue
		}
		out = append(out, UserBadgeDTO{
			Badge:    NewBadgeDTO(earned[i].Badge),
			EarnedAt: earned[i].EarnedAt,
		})
	}
	return out, nil
}

// RecordDealPosted credits one posted deal and evaluates badge unlocks against
// the fresh stats. A vanished profile is skipped silently; posting works
// before the user ever opened their profile tab.
func (s *service) RecordDealPosted(ctx context.Context, userID uuid.UUID, moneySaved decimal.Decimal) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if moneySaved.IsNegative() {
		moneySaved = decimal.Zero
	}

	profile, err := s.profileRepo.BumpDealStats(ctx, userID, moneySaved)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// First contact happens through EnsureProfile; seed and retry once.
			if _, ensureErr := s.EnsureProfile(ctx, userID, ""); ensureErr != nil {
				return ensureErr
			}
			profile, err = s.profileRepo.BumpDealStats(ctx, userID, moneySaved)
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bump deal stats")
		}
	}

	return s.evaluateBadges(ctx, profile)
}

func (s *service) evaluateBadges(ctx context.Context, profile *models.Profile) error {
	badges, err := s.profileRepo.ListBadges(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list badge definitions")
	}
	for i := range badges {
		badge := &badges[i]
		if !badgeEarned(badge, profile) {
			continue
		}
		if err := s.profileRepo.AwardBadge(ctx, profile.ID, badge.ID); err != nil {
			s.logg.Error(ctx, "profiles.award_badge_failed", err)
		}
	}
	return nil
}

// badgeEarned compares one badge threshold against the current stats.
func badgeEarned(badge *models.Badge, profile *models.Profile) bool {
	switch badge.RequirementType {
	case enums.BadgeRequirementXP:
		return profile.XPPoints >= badge.RequirementValue
	case enums.BadgeRequirementDealsPosted:
		return profile.TotalDealsPosted >= badge.RequirementValue
	case enums.BadgeRequirementMoneySaved:
		return profile.TotalMoneySaved.GreaterThanOrEqual(decimal.NewFromInt(int64(badge.RequirementValue)))
	default:
		return false
	}
}

// seedUsername falls back to a stable handle when the token carries none.
func seedUsername(userID uuid.UUID, username string) string {
	trimmed := strings.TrimSpace(username)
	if trimmed != "" {
		return trimmed
	}
	return "user_" + strings.ReplaceAll(userID.String(), "-", "")[:12]
}
