package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkordes/festsched/internal/document"
	"github.com/pkordes/festsched/internal/domain"
	"github.com/pkordes/festsched/internal/repo"
)

// Setting keys.
const (
	KeyScheduleTitle = "title.schedule"
	KeyServicesTitle = "title.services"
	KeyTeamTitle     = "title.team"
	KeyHeaderImage   = "header_image"
	KeyBaseName      = "base_name"
	KeyLastSynced    = "last_synced"
)

// Keys lists every known setting in display order.
var Keys = []string{KeyScheduleTitle, KeyServicesTitle, KeyTeamTitle, KeyHeaderImage, KeyBaseName, KeyLastSynced}

// titleKeys are the settings a user may set directly.
var titleKeys = map[string]bool{KeyScheduleTitle: true, KeyServicesTitle: true, KeyTeamTitle: true}

// Suffixes appended to the source base name to derive document titles.
const (
	ScheduleSuffix = " - SCHEDULE"
	ServicesSuffix = " - SERVICE LIST"
	TeamSuffix     = " - DEVOTEE WISE SERVICES"
)

// SettingsService manages stored titles, the header image, and sync metadata.
type SettingsService struct {
	repo     repo.SettingsRepo
	defaults document.Config
}

// NewSettingsService constructs a SettingsService. defaults supplies titles
// that have never been stored.
func NewSettingsService(r repo.SettingsRepo, defaults document.Config) *SettingsService {
	return &SettingsService{repo: r, defaults: defaults}
}

// Titles returns the effective document titles.
func (s *SettingsService) Titles(ctx context.Context) (document.Config, error) {
	cfg := s.defaults
	for key, dst := range map[string]*string{
		KeyScheduleTitle: &cfg.PDFTitle,
		KeyServicesTitle: &cfg.ServicePDFTitle,
		KeyTeamTitle:     &cfg.TeamPDFTitle,
	} {
		v, err := s.optional(ctx, key)
		if err != nil {
			return document.Config{}, fmt.Errorf("service.SettingsService.Titles: %w", err)
		}
		if v != "" {
			*dst = v
		}
	}
	return cfg, nil
}

// Get returns one setting. Unset titles report their default.
func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	if !known(key) {
		return "", fmt.Errorf("service.SettingsService.Get: unknown key %q: %w", key, domain.ErrValidation)
	}
	v, err := s.repo.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		if d := s.defaultFor(key); d != "" {
			return d, nil
		}
	}
	if err != nil {
		return "", fmt.Errorf("service.SettingsService.Get: %w", err)
	}
	return v, nil
}

// Set stores a title. Only title keys may be set directly.
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	if !titleKeys[key] {
		return fmt.Errorf("service.SettingsService.Set: key %q is not settable: %w", key, domain.ErrValidation)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("service.SettingsService.Set: %s must not be empty: %w", key, domain.ErrValidation)
	}
	if err := s.repo.Set(ctx, key, value); err != nil {
		return fmt.Errorf("service.SettingsService.Set: %w", err)
	}
	return nil
}

// List returns every stored setting.
func (s *SettingsService) List(ctx context.Context) ([]repo.Setting, error) {
	settings, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("service.SettingsService.List: %w", err)
	}
	return settings, nil
}

// ApplyBaseName derives all three titles from the source base name,
// uppercased. An empty name changes nothing.
func (s *SettingsService) ApplyBaseName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	prefix := strings.ToUpper(name)
	for _, kv := range [][2]string{
		{KeyBaseName, name},
		{KeyScheduleTitle, prefix + ScheduleSuffix},
		{KeyServicesTitle, prefix + ServicesSuffix},
		{KeyTeamTitle, prefix + TeamSuffix},
	} {
		if err := s.repo.Set(ctx, kv[0], kv[1]); err != nil {
			return fmt.Errorf("service.SettingsService.ApplyBaseName: %w", err)
		}
	}
	return nil
}

// MarkSynced records the time of the last successful sync.
func (s *SettingsService) MarkSynced(ctx context.Context, t time.Time) error {
	if err := s.repo.Set(ctx, KeyLastSynced, t.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("service.SettingsService.MarkSynced: %w", err)
	}
	return nil
}

// HeaderImage returns the cached header image as a data URL, or "" if none.
func (s *SettingsService) HeaderImage(ctx context.Context) (string, error) {
	v, err := s.optional(ctx, KeyHeaderImage)
	if err != nil {
		return "", fmt.Errorf("service.SettingsService.HeaderImage: %w", err)
	}
	return v, nil
}

// SetHeaderImage caches raw PNG, JPEG or GIF bytes as a data URL.
func (s *SettingsService) SetHeaderImage(ctx context.Context, raw []byte) error {
	url, err := DataURL(raw)
	if err != nil {
		return fmt.Errorf("service.SettingsService.SetHeaderImage: %w", err)
	}
	if err := s.repo.Set(ctx, KeyHeaderImage, url); err != nil {
		return fmt.Errorf("service.SettingsService.SetHeaderImage: %w", err)
	}
	return nil
}

// ClearHeaderImage removes the cached header image. Clearing an absent
// image is not an error.
func (s *SettingsService) ClearHeaderImage(ctx context.Context) error {
	err := s.repo.Delete(ctx, KeyHeaderImage)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("service.SettingsService.ClearHeaderImage: %w", err)
	}
	return nil
}

// DataURL encodes image bytes as a base64 data URL. Only PNG, JPEG and GIF
// are accepted.
func DataURL(raw []byte) (string, error) {
	mime := http.DetectContentType(raw)
	switch mime {
	case "image/png", "image/jpeg", "image/gif":
	default:
		return "", fmt.Errorf("image type %s: %w", mime, domain.ErrValidation)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

func (s *SettingsService) optional(ctx context.Context, key string) (string, error) {
	v, err := s.repo.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (s *SettingsService) defaultFor(key string) string {
	switch key {
	case KeyScheduleTitle:
		return s.defaults.PDFTitle
	case KeyServicesTitle:
		return s.defaults.ServicePDFTitle
	case KeyTeamTitle:
		return s.defaults.TeamPDFTitle
	}
	return ""
}

func known(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
