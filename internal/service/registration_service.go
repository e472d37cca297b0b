package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"carmeet/internal/model"
	"carmeet/internal/repository"
	"carmeet/internal/storage"
	"carmeet/internal/utils"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrEmptyPlate           = errors.New("plate must not be empty")
	ErrInvalidAction        = errors.New("action must be one of: accept, decline")
	ErrInvalidFileFormat    = errors.New("invalid file format. only .jpg, .jpeg, .png, .webp are allowed")
	ErrFileSizeExceeded     = errors.New("file size exceeds limit")
)

const MaxPhotoSize = 5 * 1024 * 1024 // 5MB

const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100
)

// ValidationError reports which required form fields were missing or empty
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// RegistrationService defines the registration lifecycle operations:
// public intake and lookup, plus admin moderation.
type RegistrationService interface {
	Submit(ctx context.Context, req model.CreateRegistrationRequest, photos []*multipart.FileHeader) (int64, error)
	CheckPlate(ctx context.Context, rawPlate string) (*model.PlateStatus, error)
	ListAccepted(ctx context.Context, page, limit int) (*model.VehiclePage, error)
	ListAll(ctx context.Context) ([]model.Registration, error)
	Moderate(ctx context.Context, id int64, action string) (*model.Registration, error)
}

type registrationService struct {
	repo   repository.RegistrationRepository
	photos storage.PhotoStore
}

// NewRegistrationService creates a new RegistrationService
func NewRegistrationService(repo repository.RegistrationRepository, photos storage.PhotoStore) RegistrationService {
	return &registrationService{repo: repo, photos: photos}
}

// Submit validates the form, stores any photos, and creates one pending
// registration. Photo storage is all-or-nothing: if any upload fails the
// already-stored files are removed and no row is written.
func (s *registrationService) Submit(ctx context.Context, req model.CreateRegistrationRequest, photos []*multipart.FileHeader) (int64, error) {
	if err := validateSubmission(req); err != nil {
		return 0, err
	}

	for _, fh := range photos {
		if err := validatePhoto(fh); err != nil {
			return 0, err
		}
	}

	urls, err := s.storePhotos(ctx, photos)
	if err != nil {
		return 0, err
	}

	var instagram *string
	if ig := strings.TrimSpace(req.Instagram); ig != "" {
		instagram = &ig
	}

	reg := &model.Registration{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Mobile:      strings.TrimSpace(req.Mobile),
		Car:         strings.TrimSpace(req.Car),
		Plate:       strings.TrimSpace(req.Plate),
		Description: strings.TrimSpace(req.Description),
		Instagram:   instagram,
		Photos:      urls,
		Status:      model.StatusPending,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, reg); err != nil {
		s.removePhotos(ctx, urls)
		return 0, fmt.Errorf("failed to create registration in repo: %w", err)
	}
	return reg.ID, nil
}

// CheckPlate normalizes the plate and returns the public status of the
// matching registration.
func (s *registrationService) CheckPlate(ctx context.Context, rawPlate string) (*model.PlateStatus, error) {
	normalized := utils.NormalizePlate(rawPlate)
	if normalized == "" {
		return nil, ErrEmptyPlate
	}

	reg, err := s.repo.FindByNormalizedPlate(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to look up plate: %w", err)
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}

	return &model.PlateStatus{
		ID:        reg.ID,
		Status:    reg.Status,
		Name:      reg.Name,
		Plate:     reg.Plate,
		CreatedAt: reg.CreatedAt,
	}, nil
}

// ListAccepted returns one page of accepted registrations in their public
// projection, newest first. Out-of-range page/limit values are clamped.
func (s *registrationService) ListAccepted(ctx context.Context, page, limit int) (*model.VehiclePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	regs, err := s.repo.FindAccepted(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list accepted registrations: %w", err)
	}
	total, err := s.repo.CountAccepted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count accepted registrations: %w", err)
	}

	vehicles := make([]model.Vehicle, 0, len(regs))
	for _, reg := range regs {
		photos := reg.Photos
		if photos == nil {
			photos = []string{}
		}
		vehicles = append(vehicles, model.Vehicle{
			ID:          reg.ID,
			Name:        reg.Name,
			Car:         reg.Car,
			Plate:       reg.Plate,
			Description: reg.Description,
			Photos:      photos,
			Status:      reg.Status,
			CreatedAt:   reg.CreatedAt,
		})
	}

	return &model.VehiclePage{
		Data:    vehicles,
		HasMore: int64(page)*int64(limit) < total,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

// ListAll returns every registration, newest first. Admin only; callers
// go through the session middleware.
func (s *registrationService) ListAll(ctx context.Context) ([]model.Registration, error) {
	regs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return regs, nil
}

// Moderate applies an accept/decline action to the registration matching
// id and returns the updated row. Re-moderating an already accepted or
// declined registration overwrites its status; there is no terminal-state
// guard.
func (s *registrationService) Moderate(ctx context.Context, id int64, action string) (*model.Registration, error) {
	var status string
	switch action {
	case model.ActionAccept:
		status = model.StatusAccepted
	case model.ActionDecline:
		status = model.StatusDeclined
	default:
		return nil, ErrInvalidAction
	}

	reg, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update registration status: %w", err)
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}
	return reg, nil
}

func validateSubmission(req model.CreateRegistrationRequest) error {
	required := []struct {
		name  string
		value string
	}{
		{"name", req.Name},
		{"email", req.Email},
		{"mobile", req.Mobile},
		{"car", req.Car},
		{"plate", req.Plate},
		{"description", req.Description},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func validatePhoto(fh *multipart.FileHeader) error {
	if fh.Size > MaxPhotoSize {
		return ErrFileSizeExceeded
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	allowedExts := map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
	if !allowedExts[ext] {
		return ErrInvalidFileFormat
	}
	return nil
}

// storePhotos uploads every photo, removing the ones already stored if a
// later upload fails.
func (s *registrationService) storePhotos(ctx context.Context, photos []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(photos))
	for _, fh := range photos {
		src, err := fh.Open()
		if err != nil {
			s.removePhotos(ctx, urls)
			return nil, fmt.Errorf("failed to open uploaded photo: %w", err)
		}

		url, err := s.photos.Save(ctx, fh.Filename, src)
		src.Close()
		if err != nil {
			s.removePhotos(ctx, urls)
			return nil, fmt.Errorf("failed to store photo: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *registrationService) removePhotos(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.photos.Remove(ctx, url); err != nil {
			log.Printf("Failed to remove photo %s after aborted submission: %v", url, err)
		}
	}
}
