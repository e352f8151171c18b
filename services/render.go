package services

import (
	"fmt"
	"strings"

	"github.com/yeremiapane/qr-hotel-menu/models"
	"github.com/yeremiapane/qr-hotel-menu/telegram"
	"github.com/yeremiapane/qr-hotel-menu/utils"
)

const UnspecifiedLocation = "unspecified"

var statusEmoji = map[string]string{
	models.StatusNew:      "🆕",
	models.StatusCooking:  "🍳",
	models.StatusDone:     "✅",
	models.StatusArchived: "📦",
}

// LocationLabel describes where the order goes. Room wins over floor, floor over building.
// The order must be loaded with preloadOrder for the hierarchy to show.
func LocationLabel(o *models.Order) string {
	switch {
	case o.RoomID != nil:
		if o.Room == nil {
			return fmt.Sprintf("Room #%d", *o.RoomID)
		}
		return roomLabel(o.Room)
	case o.FloorID != nil:
		if o.Floor == nil {
			return fmt.Sprintf("Floor #%d", *o.FloorID)
		}
		return floorLabel(o.Floor)
	case o.BuildingID != nil:
		if o.Building == nil {
			return fmt.Sprintf("Building #%d", *o.BuildingID)
		}
		return buildingLabel(o.Building)
	}
	return UnspecifiedLocation
}

func roomLabel(r *models.Room) string {
	var parts []string
	if r.Floor != nil {
		parts = floorParts(r.Floor)
	}
	return strings.Join(append(parts, "Room: "+r.Number), ", ")
}

func floorLabel(f *models.Floor) string {
	parts := floorParts(f)
	if len(parts) == 0 {
		return fmt.Sprintf("Floor #%d", f.ID)
	}
	return strings.Join(parts, ", ")
}

func floorParts(f *models.Floor) []string {
	var parts []string
	if f.Building != nil && f.Building.Name != "" {
		parts = append(parts, "Building: "+f.Building.Name)
	}
	if f.Name != "" {
		parts = append(parts, "Floor: "+f.Name)
	}
	return parts
}

func buildingLabel(b *models.Building) string {
	return "Building: " + b.Name
}

// RenderOrderMessage builds the plain-text chat message for an order.
// The first message says "New order"; edits carry the emoji of the current status.
func RenderOrderMessage(o *models.Order, isNew bool) string {
	var header string
	if isNew {
		header = fmt.Sprintf("%s New order #%d", statusEmoji[models.StatusNew], o.ID)
	} else {
		emoji, ok := statusEmoji[o.Status]
		if !ok {
			emoji = "📋"
		}
		header = fmt.Sprintf("%s Order #%d", emoji, o.ID)
	}

	lines := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, fmt.Sprintf("• %s x%d - %s", item.ProductName(), item.Quantity, utils.FormatPrice(item.Total())))
	}

	var b strings.Builder
	b.WriteString(header + "\n\n")
	fmt.Fprintf(&b, "📍 %s\n", LocationLabel(o))
	fmt.Fprintf(&b, "💰 Total: %s\n", utils.FormatPrice(o.TotalPrice))
	fmt.Fprintf(&b, "🕐 Time: %s\n\n", o.CreatedAt.Format("15:04"))
	b.WriteString("📋 Items:\n")
	b.WriteString(strings.Join(lines, "\n"))
	fmt.Fprintf(&b, "\n\nStatus: %s", models.StatusLabel(o.Status))
	return b.String()
}

// OrderKeyboard offers the bot actions still meaningful for the order's status.
// Finished orders get no buttons.
func OrderKeyboard(o *models.Order) *telegram.InlineKeyboard {
	done := telegram.InlineButton{
		Text:         statusEmoji[models.StatusDone] + " Done",
		CallbackData: telegram.OrderActionData(ActionDone, o.ID),
	}
	switch o.Status {
	case models.StatusNew:
		accept := telegram.InlineButton{
			Text:         statusEmoji[models.StatusCooking] + " Accept",
			CallbackData: telegram.OrderActionData(ActionAccept, o.ID),
		}
		return &telegram.InlineKeyboard{Rows: [][]telegram.InlineButton{{accept, done}}}
	case models.StatusCooking:
		return &telegram.InlineKeyboard{Rows: [][]telegram.InlineButton{{done}}}
	}
	return nil
}
