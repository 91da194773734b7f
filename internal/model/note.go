package model

import "time"

// Color is the sticky-note color a note is rendered with.
type Color string

const (
	ColorYellow Color = "yellow"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorPink   Color = "pink"
	ColorOrange Color = "orange"
)

// DefaultColor is used when a note is created without one.
const DefaultColor = ColorYellow

var validColors = map[Color]bool{
	ColorYellow: true,
	ColorBlue:   true,
	ColorGreen:  true,
	ColorPink:   true,
	ColorOrange: true,
}

func (c Color) Valid() bool {
	return validColors[c]
}

type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Color     Color     `json:"color"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
