// Package token issues and resolves the per-day opaque tokens behind the
// daily verification QR code.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sakethsreeram7/food-tracker/internal/domain"
	"github.com/Sakethsreeram7/food-tracker/internal/store"
)

// Renderer turns a verification payload into a scannable image and returns a
// handle to it (a file path in the default implementation). The issuer does
// not care about image encoding.
type Renderer interface {
	Render(payload string, date domain.Date) (string, error)
}

// MealReader answers "what did this user opt into for date D" without any
// window gating; optin.Service satisfies it.
type MealReader interface {
	MealsFor(ctx context.Context, userID int64, date domain.Date) ([]domain.MealStatus, error)
}

// Issuer mints, resolves and rotates date-scoped verification tokens.
type Issuer struct {
	repo     store.Repo
	renderer Renderer
	meals    MealReader
	log      *zap.Logger
	baseURL  string
	mint     func() string
	now      func() time.Time
}

// New creates an Issuer. baseURL prefixes the payload encoded into the QR
// image, e.g. "https://mess.example.com".
func New(repo store.Repo, renderer Renderer, meals MealReader, log *zap.Logger, baseURL string) *Issuer {
	return &Issuer{
		repo:     repo,
		renderer: renderer,
		meals:    meals,
		log:      log,
		baseURL:  baseURL,
		mint:     func() string { return uuid.NewString() },
		now:      time.Now,
	}
}

// Payload encodes date and token into the string a scanner resolves.
func (i *Issuer) Payload(t *domain.VerificationToken) string {
	return fmt.Sprintf("%s/verify-meal/%s/%s", i.baseURL, t.Date, t.Token)
}

// Issue returns the token for date, minting and persisting one on first use.
// Re-issuing is idempotent: the existing token and a freshly rendered image
// handle come back unchanged. The rendered image handle is returned alongside.
func (i *Issuer) Issue(ctx context.Context, date domain.Date) (*domain.VerificationToken, string, error) {
	existing, err := i.repo.GetToken(ctx, date)
	if err == nil {
		img, rerr := i.renderer.Render(i.Payload(existing), date)
		if rerr != nil {
			return nil, "", rerr
		}
		return existing, img, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", err
	}

	t := &domain.VerificationToken{
		Date:      date,
		Token:     i.mint(),
		CreatedAt: i.now().UTC(),
	}
	if err := i.repo.InsertToken(ctx, t); err != nil {
		return nil, "", err
	}
	img, err := i.renderer.Render(i.Payload(t), date)
	if err != nil {
		return nil, "", err
	}

	i.log.Info("verification token issued", zap.String("date", date.String()))
	return t, img, nil
}

// Resolve reports whether (date, token) matches the live token exactly.
func (i *Issuer) Resolve(ctx context.Context, date domain.Date, token string) (bool, error) {
	t, err := i.repo.GetToken(ctx, date)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return t.Token == token, nil
}

// Regenerate atomically replaces the token for date. The previous token
// stops resolving the instant the swap commits; there is no window where
// both or neither validate.
func (i *Issuer) Regenerate(ctx context.Context, date domain.Date) (*domain.VerificationToken, string, error) {
	t := &domain.VerificationToken{
		Date:      date,
		Token:     i.mint(),
		CreatedAt: i.now().UTC(),
	}
	if err := i.repo.ReplaceToken(ctx, t); err != nil {
		return nil, "", err
	}
	img, err := i.renderer.Render(i.Payload(t), date)
	if err != nil {
		return nil, "", err
	}

	i.log.Info("verification token regenerated", zap.String("date", date.String()))
	return t, img, nil
}

// VerifyMeals resolves a scanned (date, token) pair and, when valid, returns
// the user's per-meal opt-in status for that date. An invalid or superseded
// token yields ErrNotFound.
func (i *Issuer) VerifyMeals(ctx context.Context, date domain.Date, token string, userID int64) ([]domain.MealStatus, error) {
	ok, err := i.Resolve(ctx, date, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: verification token for %s", domain.ErrNotFound, date)
	}
	return i.meals.MealsFor(ctx, userID, date)
}
