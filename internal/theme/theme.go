package theme

import (
	"embed"
	"image/color"
)

// EmbeddedThemes holds the themes shipped with the binary.
//
//go:embed defaults/*.theme
var EmbeddedThemes embed.FS

// Theme defines the colors used to draw the editor window.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Window background behind the canvas
	Foreground color.RGBA // Main text color

	// Toolbar & class panel
	ToolbarBackground color.RGBA
	PanelBackground   color.RGBA
	PanelText         color.RGBA
	PanelActive       color.RGBA // Outline around the active class swatch

	// Tool Buttons
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA

	// Annotation overlays
	SelectionLight color.RGBA // Dashed selection box, first dash color
	SelectionDark  color.RGBA // Dashed selection box, second dash color
	Handle         color.RGBA
	HandleActive   color.RGBA
	BrushCursor    color.RGBA

	// Message overlay
	MessageBackground color.RGBA
	MessageText       color.RGBA
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{220, 220, 220, 255},
		Foreground:            color.RGBA{0, 0, 0, 255},
		ToolbarBackground:     color.RGBA{220, 220, 220, 255},
		PanelBackground:       color.RGBA{230, 230, 230, 255},
		PanelText:             color.RGBA{0, 0, 0, 255},
		PanelActive:           color.RGBA{0, 0, 0, 255},
		ButtonBackground:      color.RGBA{200, 200, 200, 255},
		ButtonBackgroundHover: color.RGBA{180, 180, 180, 255},
		ButtonBackgroundPress: color.RGBA{150, 150, 150, 255},
		ButtonText:            color.RGBA{0, 0, 0, 255},
		ButtonBorder:          color.RGBA{0, 0, 0, 255},
		CheckerLight:          color.RGBA{220, 220, 220, 255},
		CheckerDark:           color.RGBA{192, 192, 192, 255},
		SelectionLight:        color.RGBA{255, 255, 255, 255},
		SelectionDark:         color.RGBA{0, 0, 0, 255},
		Handle:                color.RGBA{255, 255, 255, 255},
		HandleActive:          color.RGBA{255, 0, 0, 255},
		BrushCursor:           color.RGBA{0, 0, 0, 255},
		MessageBackground:     color.RGBA{255, 255, 255, 230},
		MessageText:           color.RGBA{0, 0, 0, 255},
	}
}
