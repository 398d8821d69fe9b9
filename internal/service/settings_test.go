package service_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/festsched/internal/document"
	"github.com/pkordes/festsched/internal/domain"
	"github.com/pkordes/festsched/internal/service"
)

// ---- helpers ---------------------------------------------------------------

var defaultTitles = document.Config{
	PDFTitle:        "SCHEDULE",
	ServicePDFTitle: "SERVICE LIST",
	TeamPDFTitle:    "DEVOTEE WISE SERVICES",
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

// ---- titles ----------------------------------------------------------------

func TestSettingsService_Titles_defaults(t *testing.T) {
	svc := service.NewSettingsService(memSettings(map[string]string{}), defaultTitles)

	got, err := svc.Titles(context.Background())

	require.NoError(t, err)
	assert.Equal(t, defaultTitles, got)
}

func TestSettingsService_Titles_storedOverridesDefault(t *testing.T) {
	svc := service.NewSettingsService(memSettings(map[string]string{
		service.KeyServicesTitle: "SEVA LIST",
	}), defaultTitles)

	got, err := svc.Titles(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "SCHEDULE", got.PDFTitle)
	assert.Equal(t, "SEVA LIST", got.ServicePDFTitle)
}

func TestSettingsService_Titles_repoError(t *testing.T) {
	repoErr := errors.New("db exploded")
	r := memSettings(map[string]string{})
	r.get = func(context.Context, string) (string, error) { return "", repoErr }
	svc := service.NewSettingsService(r, defaultTitles)

	_, err := svc.Titles(context.Background())

	assert.ErrorIs(t, err, repoErr)
}

func TestSettingsService_ApplyBaseName(t *testing.T) {
	store := map[string]string{}
	svc := service.NewSettingsService(memSettings(store), defaultTitles)

	require.NoError(t, svc.ApplyBaseName(context.Background(), "Janmashtami 2025"))

	got, err := svc.Titles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "JANMASHTAMI 2025 - SCHEDULE", got.PDFTitle)
	assert.Equal(t, "JANMASHTAMI 2025 - SERVICE LIST", got.ServicePDFTitle)
	assert.Equal(t, "JANMASHTAMI 2025 - DEVOTEE WISE SERVICES", got.TeamPDFTitle)
	assert.Equal(t, "Janmashtami 2025", store[service.KeyBaseName])
}

func TestSettingsService_ApplyBaseName_emptyIsNoop(t *testing.T) {
	store := map[string]string{}
	svc := service.NewSettingsService(memSettings(store), defaultTitles)

	require.NoError(t, svc.ApplyBaseName(context.Background(), "  "))

	assert.Empty(t, store)
}

// ---- get / set -------------------------------------------------------------

func TestSettingsService_Set(t *testing.T) {
	store := map[string]string{}
	svc := service.NewSettingsService(memSettings(store), defaultTitles)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, service.KeyTeamTitle, "  VOLUNTEERS "))
	assert.Equal(t, "VOLUNTEERS", store[service.KeyTeamTitle])

	assert.ErrorIs(t, svc.Set(ctx, service.KeyTeamTitle, "   "), domain.ErrValidation)
	assert.ErrorIs(t, svc.Set(ctx, service.KeyHeaderImage, "x"), domain.ErrValidation)
	assert.ErrorIs(t, svc.Set(ctx, "colour", "red"), domain.ErrValidation)
}

func TestSettingsService_Get(t *testing.T) {
	svc := service.NewSettingsService(memSettings(map[string]string{service.KeyBaseName: "Fest"}), defaultTitles)
	ctx := context.Background()

	v, err := svc.Get(ctx, service.KeyBaseName)
	require.NoError(t, err)
	assert.Equal(t, "Fest", v)

	v, err = svc.Get(ctx, service.KeyScheduleTitle)
	require.NoError(t, err)
	assert.Equal(t, "SCHEDULE", v, "unset titles report the default")

	_, err = svc.Get(ctx, service.KeyLastSynced)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSettingsService_MarkSynced(t *testing.T) {
	store := map[string]string{}
	svc := service.NewSettingsService(memSettings(store), defaultTitles)

	at := time.Date(2025, 8, 16, 9, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	require.NoError(t, svc.MarkSynced(context.Background(), at))

	assert.Equal(t, "2025-08-16T04:00:00Z", store[service.KeyLastSynced])
}

// ---- header image ----------------------------------------------------------

func TestSettingsService_HeaderImage(t *testing.T) {
	store := map[string]string{}
	svc := service.NewSettingsService(memSettings(store), defaultTitles)
	ctx := context.Background()

	got, err := svc.HeaderImage(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, svc.SetHeaderImage(ctx, pngBytes(t)))
	got, err = svc.HeaderImage(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "data:image/png;base64,"), got)

	require.NoError(t, svc.ClearHeaderImage(ctx))
	require.NoError(t, svc.ClearHeaderImage(ctx), "clearing twice is fine")
	got, err = svc.HeaderImage(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSettingsService_SetHeaderImage_rejectsNonImage(t *testing.T) {
	svc := service.NewSettingsService(memSettings(map[string]string{}), defaultTitles)

	err := svc.SetHeaderImage(context.Background(), []byte("%PDF-1.4 not an image"))

	assert.ErrorIs(t, err, domain.ErrValidation)
}
