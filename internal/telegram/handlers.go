package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Sakethsreeram7/food-tracker/internal/domain"
)

// --- Generic helpers ---

func (r *Router) sendText(chatID int64, text string) {
	_, _ = r.bot.Send(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) answerCallback(id, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(id, text))
	return err
}

// targetDate resolves an optional YYYY-MM-DD argument; default is tomorrow.
func (r *Router) targetDate(args []string) (domain.Date, error) {
	if len(args) == 0 {
		return r.svc.DefaultTarget(), nil
	}
	return domain.ParseDate(args[0])
}

// replyErr turns a domain error into a user-facing message.
func (r *Router) replyErr(chatID int64, err error) {
	switch {
	case errors.Is(err, domain.ErrWindowClosed):
		r.sendText(chatID, windowClosedText)
	case errors.Is(err, domain.ErrInvalidMealType):
		r.sendText(chatID, "Unknown meal. Try Breakfast, Lunch or Dinner.")
	case errors.Is(err, domain.ErrInvalidDate):
		r.sendText(chatID, "Invalid date. Use YYYY-MM-DD.")
	case errors.Is(err, domain.ErrNotFound):
		r.sendText(chatID, "Nothing found for that request.")
	case errors.Is(err, domain.ErrUnauthorized):
		r.sendText(chatID, "This command is for mess admins only.")
	default:
		r.log.Error("handler failed", zap.Error(err))
		r.sendText(chatID, "Something went wrong. Please try again later.")
	}
}

// --- Core commands ---

func (r *Router) handleStart(ctx context.Context, chatID int64) {
	msg := tgbotapi.NewMessage(chatID, startText)
	msg.ReplyMarkup = mainMenuKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleStatus(ctx context.Context, chatID int64, args []string) {
	date, err := r.targetDate(args)
	if err != nil {
		r.replyErr(chatID, err)
		return
	}

	report, err := r.svc.Status(ctx, chatID, date)
	if err != nil {
		r.replyErr(chatID, err)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, statusTitleFmt, report.Date)
	if report.WindowOpen {
		b.WriteString(windowOpenText)
	} else {
		b.WriteString(windowClosedText)
	}
	b.WriteString("\n\n")
	for _, m := range report.Meals {
		mark := "✗"
		if m.OptedIn {
			mark = "✓"
		}
		fmt.Fprintf(&b, "%s %s\n", mark, m.MealType.Name)
	}

	msg := tgbotapi.NewMessage(chatID, b.String())
	if report.WindowOpen {
		msg.ReplyMarkup = mealInlineKeyboard(report.Meals)
	}
	_, _ = r.bot.Send(msg)
}

// handleOptChange handles /optin and /optout. With no arguments it offers
// the meal buttons for tomorrow instead.
func (r *Router) handleOptChange(ctx context.Context, chatID int64, args []string, optIn bool) {
	if len(args) == 0 {
		r.handleStatus(ctx, chatID, nil)
		return
	}

	meal, err := r.svc.MealTypeByName(ctx, args[0])
	if err != nil {
		r.replyErr(chatID, err)
		return
	}
	date, err := r.targetDate(args[1:])
	if err != nil {
		r.replyErr(chatID, err)
		return
	}

	rec, err := r.svc.SetOptIn(ctx, chatID, meal.ID, date, optIn)
	if err != nil {
		r.replyErr(chatID, err)
		return
	}

	verb := "opted out of"
	if rec.OptedIn {
		verb = "opted in for"
	}
	r.sendText(chatID, fmt.Sprintf("You %s %s on %s.", verb, meal.Name, rec.Date))
}

func (r *Router) handleOptCallback(ctx context.Context, chatID int64, data string, optIn bool, cbID string) {
	_ = r.answerCallback(cbID, "")

	mealID, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		return
	}
	rec, err := r.svc.SetOptIn(ctx, chatID, mealID, r.svc.DefaultTarget(), optIn)
	if err != nil {
		r.replyErr(chatID, err)
		return
	}
	state := "out"
	if rec.OptedIn {
		state = "in"
	}
	r.sendText(chatID, fmt.Sprintf("Opted %s for %s.", state, rec.Date))
}

// --- Weekly preference flow ---

// handleWeekly with no args shows the stored patterns; with args it patches
// one meal's pattern: `/weekly lunch mon,tue,-fri` sets Monday and Tuesday
// and clears Friday, leaving other days untouched.
func (r *Router) handleWeekly(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		r.showWeekly(ctx, chatID)
		return
	}
	if len(args) < 2 {
		r.sendText(chatID, weeklyUsageText)
		return
	}

	meal, err := r.svc.MealTypeByName(ctx, args[0])
	if err != nil {
		r.replyErr(chatID, err)
		return
	}
	patch, err := parseDayPatch(args[1])
	if err != nil {
		r.sendText(chatID, weeklyUsageText)
		return
	}

	pref, err := r.svc.SetWeeklyPreference(ctx, chatID, meal.ID, patch)
	if err != nil {
		r.replyErr(chatID, err)
		return
	}
	applied, err := r.svc.Propagate(ctx, chatID, meal.ID)
	if err != nil {
		r.replyErr(chatID, err)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly plan for %s: %s\n", meal.Name, formatPattern(*pref))
	if len(applied) > 0 {
		b.WriteString("Booked now: ")
		for i, d := range applied {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.String())
		}
	} else {
		b.WriteString("No day is currently open; your plan applies once windows open.")
	}
	r.sendText(chatID, b.String())
}

func (r *Router) showWeekly(ctx context.Context, chatID int64) {
	prefs, err := r.svc.WeeklyStatus(ctx, chatID)
	if err != nil {
		r.replyErr(chatID, err)
		return
	}
	meals, err := r.svc.MealTypes(ctx)
	if err != nil {
		r.replyErr(chatID, err)
		return
	}
	names := make(map[int64]string, len(meals))
	for _, m := range meals {
		names[m.ID] = m.Name
	}

	var b strings.Builder
	b.WriteString("Your weekly plans:\n")
	for _, p := range prefs {
		fmt.Fprintf(&b, "• %s: %s\n", names[p.MealTypeID], formatPattern(p))
	}
	b.WriteString("\n" + weeklyUsageText)
	r.sendText(chatID, b.String())
}

// parseDayPatch parses "mon,tue,-fri" into a partial weekday update.
func parseDayPatch(s string) (domain.DayPatch, error) {
	var patch domain.DayPatch
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		val := true
		if strings.HasPrefix(part, "-") {
			val = false
			part = part[1:]
		}
		v := val
		switch part {
		case "mon", "monday":
			patch.Monday = &v
		case "tue", "tuesday":
			patch.Tuesday = &v
		case "wed", "wednesday":
			patch.Wednesday = &v
		case "thu", "thursday":
			patch.Thursday = &v
		case "fri", "friday":
			patch.Friday = &v
		default:
			return domain.DayPatch{}, fmt.Errorf("unknown day %q", part)
		}
	}
	return patch, nil
}

func formatPattern(p domain.WeeklyPreference) string {
	days := []struct {
		name string
		on   bool
	}{
		{"Mon", p.Monday}, {"Tue", p.Tuesday}, {"Wed", p.Wednesday},
		{"Thu", p.Thursday}, {"Fri", p.Friday},
	}
	var on []string
	for _, d := range days {
		if d.on {
			on = append(on, d.name)
		}
	}
	if len(on) == 0 {
		return "none"
	}
	return strings.Join(on, ", ")
}

// --- Admin commands ---

func (r *Router) handleQR(ctx context.Context, chatID int64, args []string) {
	if !r.isAdmin(chatID) {
		r.replyErr(chatID, domain.ErrUnauthorized)
		return
	}
	target := r.svc.DefaultTarget().AddDays(-1) // today
	if len(args) > 0 {
		var err error
		target, err = domain.ParseDate(args[0])
		if err != nil {
			r.replyErr(chatID, err)
			return
		}
	}

	tok, img, err := r.issuer.Issue(ctx, target)
	if err != nil {
		r.replyErr(chatID, err)
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(img))
	photo.Caption = "Verification QR for " + tok.Date.String()
	if _, err := r.bot.Send(photo); err != nil {
		r.log.Error("send qr failed", zap.Error(err))
		r.sendText(chatID, "Token ready, but sending the image failed: "+r.issuer.Payload(tok))
	}
}

func (r *Router) handleRegenQR(ctx context.Context, chatID int64, args []string) {
	if !r.isAdmin(chatID) {
		r.replyErr(chatID, domain.ErrUnauthorized)
		return
	}
	if len(args) == 0 {
		r.sendText(chatID, "Usage: /regenqr YYYY-MM-DD")
		return
	}
	date, err := domain.ParseDate(args[0])
	if err != nil {
		r.replyErr(chatID, err)
		return
	}

	tok, img, err := r.issuer.Regenerate(ctx, date)
	if err != nil {
		r.replyErr(chatID, err)
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(img))
	photo.Caption = "New QR for " + tok.Date.String() + ". The old code no longer works."
	_, _ = r.bot.Send(photo)
}

func (r *Router) handleRoster(ctx context.Context, chatID int64, args []string) {
	if !r.isAdmin(chatID) {
		r.replyErr(chatID, domain.ErrUnauthorized)
		return
	}
	target := r.svc.DefaultTarget().AddDays(-1) // today
	if len(args) > 0 {
		var err error
		target, err = domain.ParseDate(args[0])
		if err != nil {
			r.replyErr(chatID, err)
			return
		}
	}

	recs, err := r.svc.Roster(ctx, target, 0)
	if err != nil {
		r.replyErr(chatID, err)
		return
	}
	meals, err := r.svc.MealTypes(ctx)
	if err != nil {
		r.replyErr(chatID, err)
		return
	}

	counts := make(map[int64]int)
	for _, rec := range recs {
		counts[rec.MealTypeID]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Opted in for %s:\n", target)
	for _, m := range meals {
		fmt.Fprintf(&b, "• %s: %d\n", m.Name, counts[m.ID])
	}
	r.sendText(chatID, b.String())
}
