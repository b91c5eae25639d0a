package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/auth"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/models"
	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/repository"
	"gorm.io/datatypes"
)

const (
	DefaultOccupation = "Not specified"
	DefaultBio        = "No bio available"
	DefaultPhotoURL   = "/images/user/spartan.jpg"
)

// ProfileFallbackWarning is returned with a default profile that could not be loaded or stored.
const ProfileFallbackWarning = "profile storage unavailable, showing defaults"

type ProfileService struct {
	repo repository.ProfileRepository
	now  func() time.Time
}

func NewProfileService(repo repository.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo, now: time.Now}
}

// Get returns the caller's stored profile, creating the default one on first
// access. The profile is read back after the insert so a concurrent first
// request that won the race is returned instead of the local default. When the
// repository fails the default is returned unsaved together with a warning.
func (s *ProfileService) Get(ctx context.Context, caller auth.Identity) (*models.UserProfile, string, error) {
	profile, err := s.repo.GetProfile(ctx, caller.ID)
	if err == nil {
		return profile, "", nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		slog.Error("failed to load profile", "owner_id", caller.ID, "kind", repository.KindOf(err), "error", err)
		return s.defaultProfile(caller), ProfileFallbackWarning, nil
	}

	profile = s.defaultProfile(caller)
	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		slog.Error("failed to create default profile", "owner_id", caller.ID, "kind", repository.KindOf(err), "error", err)
		return profile, ProfileFallbackWarning, nil
	}

	stored, err := s.repo.GetProfile(ctx, caller.ID)
	if err != nil {
		slog.Warn("failed to read back default profile", "owner_id", caller.ID, "kind", repository.KindOf(err), "error", err)
		return profile, "", nil
	}
	return stored, "", nil
}

// Update applies the non-nil fields of patch. A missing profile is created
// from the defaults first. A patch breaking a field rule fails with
// *InvalidFieldsError and nothing is written.
func (s *ProfileService) Update(ctx context.Context, caller auth.Identity, patch *dto.UpdateProfileRequest) (*models.UserProfile, error) {
	if err := ValidateProfilePatch(patch); err != nil {
		return nil, err
	}

	profile, err := s.repo.GetProfile(ctx, caller.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		profile = s.defaultProfile(caller)
		if err := s.repo.CreateProfile(ctx, profile); err != nil {
			return nil, err
		}
		if profile, err = s.repo.GetProfile(ctx, caller.ID); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	applyProfilePatch(profile, patch)
	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) defaultProfile(caller auth.Identity) *models.UserProfile {
	now := s.now().UTC()
	return &models.UserProfile{
		ID:          caller.ID,
		Email:       caller.Email,
		Name:        nameFromEmail(caller.Email),
		Occupation:  DefaultOccupation,
		Bio:         DefaultBio,
		PhotoURL:    DefaultPhotoURL,
		SocialLinks: datatypes.NewJSONType(models.SocialLinks{}),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func nameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local = strings.TrimSpace(local); local != "" {
		return local
	}
	return "User"
}

func applyProfilePatch(p *models.UserProfile, patch *dto.UpdateProfileRequest) {
	if patch == nil {
		return
	}
	setTrimmed(&p.Name, patch.Name)
	// Email is required on the row; a blank value keeps the current one.
	if email := trimmed(patch.Email); email != "" {
		p.Email = strings.ToLower(email)
	}
	setTrimmed(&p.Phone, patch.Phone)
	setTrimmed(&p.Occupation, patch.Occupation)
	setTrimmed(&p.Bio, patch.Bio)
	setTrimmed(&p.PhotoURL, patch.PhotoURL)

	if sl := patch.SocialLinks; sl != nil {
		links := p.SocialLinks.Data()
		setTrimmed(&links.Facebook, sl.Facebook)
		setTrimmed(&links.Twitter, sl.Twitter)
		setTrimmed(&links.LinkedIn, sl.LinkedIn)
		setTrimmed(&links.Dribbble, sl.Dribbble)
		setTrimmed(&links.GitHub, sl.GitHub)
		p.SocialLinks = datatypes.NewJSONType(links)
	}
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
