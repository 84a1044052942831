package telegram

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Sakethsreeram7/food-tracker/internal/domain"
)

// UI texts in English
const (
	startText = "🍽 Mess opt-in bot.\n\n" +
		"Tell me which meals you want and I book them while the opt-in window is open.\n\n" +
		"/status - tomorrow's meals and the window state\n" +
		"/optin lunch - book tomorrow's lunch\n" +
		"/optout dinner 2025-06-05 - cancel a booked meal\n" +
		"/weekly lunch mon,tue,wed - standing weekly plan"
	helpText = "Commands: /status, /optin, /optout, /weekly. " +
		"Dates are YYYY-MM-DD; without a date I assume tomorrow."
	statusTitleFmt   = "🧾 Meals for %s\n"
	windowOpenText   = "Opt-in is OPEN."
	windowClosedText = "Opt-in is currently closed for this date."
	weeklyUsageText  = "Usage: /weekly MEAL DAYS - e.g. /weekly lunch mon,tue,-fri " +
		"(a leading - clears a day; unmentioned days keep their setting)."
)

// mainMenuKeyboard is the persistent reply keyboard with the common commands.
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/status"),
			tgbotapi.NewKeyboardButton("/weekly"),
		),
	)
}

// mealInlineKeyboard offers one toggle button per meal for tomorrow: meals
// currently opted in get an opt-out button and vice versa.
func mealInlineKeyboard(meals []domain.MealStatus) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, m := range meals {
		label := "➕ " + m.MealType.Name
		action := "optin:"
		if m.OptedIn {
			label = "➖ " + m.MealType.Name
			action = "optout:"
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, action+strconv.FormatInt(m.MealType.ID, 10)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}
