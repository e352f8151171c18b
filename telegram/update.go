package telegram

import (
	"fmt"
	"strconv"
	"strings"
)

// Update is the subset of a webhook update the bot reacts to.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type CallbackQuery struct {
	ID   string `json:"id"`
	Data string `json:"data"`
}

type InlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// InlineKeyboard is the reply_markup attached to a message; one slice per button row.
type InlineKeyboard struct {
	Rows [][]InlineButton `json:"inline_keyboard"`
}

// OrderActionData is the callback data ParseOrderAction understands.
func OrderActionData(action string, orderID uint) string {
	return fmt.Sprintf("order_%s_%d", action, orderID)
}

// ParseOrderAction splits callback data of the form order_<action>_<id>.
func ParseOrderAction(data string) (string, uint, error) {
	parts := strings.Split(data, "_")
	if len(parts) != 3 || parts[0] != "order" || parts[1] == "" {
		return "", 0, fmt.Errorf("unrecognized callback data %q", data)
	}
	id, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil || id == 0 {
		return "", 0, fmt.Errorf("unrecognized order id in %q", data)
	}
	return parts[1], uint(id), nil
}
