// Package theme holds the two colour palettes of the main window.
package theme

import (
	"image/color"

	"fyne.io/fyne/v2"
	fynetheme "fyne.io/fyne/v2/theme"
)

// Palette maps the window's colour roles to colours. Palettes are never
// mutated; switching themes swaps which palette is current.
type Palette struct {
	Name               string
	Background         color.Color
	Text               color.Color
	Button             color.Color
	ButtonText         color.Color
	DropdownBackground color.Color
	DropdownText       color.Color
	Highlight          color.Color
	Variant            fyne.ThemeVariant
}

var (
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	black = color.NRGBA{A: 0xff}

	Light = &Palette{
		Name:               "light",
		Background:         white,
		Text:               black,
		Button:             color.NRGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff},
		ButtonText:         black,
		DropdownBackground: white,
		DropdownText:       black,
		Highlight:          color.NRGBA{R: 0xe1, G: 0xe1, B: 0xe1, A: 0xff},
		Variant:            fynetheme.VariantLight,
	}

	Dark = &Palette{
		Name:               "dark",
		Background:         black,
		Text:               white,
		Button:             black,
		ButtonText:         white,
		DropdownBackground: color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
		DropdownText:       color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff},
		Highlight:          color.NRGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff},
		Variant:            fynetheme.VariantDark,
	}
)

// Toggle returns the other palette.
func Toggle(current *Palette) *Palette {
	if current == Light {
		return Dark
	}
	return Light
}

// appTheme exposes a palette as a fyne theme, deferring everything it
// does not cover to the default theme.
type appTheme struct {
	palette *Palette
	base    fyne.Theme
}

// New wraps p as a fyne.Theme.
func New(p *Palette) fyne.Theme {
	return &appTheme{palette: p, base: fynetheme.DefaultTheme()}
}

func (t *appTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	p := t.palette
	switch name {
	case fynetheme.ColorNameBackground:
		return p.Background
	case fynetheme.ColorNameForeground:
		return p.Text
	case fynetheme.ColorNameButton:
		return p.Button
	case fynetheme.ColorNameForegroundOnPrimary,
		fynetheme.ColorNameForegroundOnSuccess,
		fynetheme.ColorNameForegroundOnError:
		return p.ButtonText
	case fynetheme.ColorNameInputBackground,
		fynetheme.ColorNameMenuBackground,
		fynetheme.ColorNameOverlayBackground:
		return p.DropdownBackground
	case fynetheme.ColorNamePlaceHolder:
		return p.DropdownText
	case fynetheme.ColorNameHover, fynetheme.ColorNameFocus:
		return p.Highlight
	}
	return t.base.Color(name, p.Variant)
}

func (t *appTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *appTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *appTheme) Size(name fyne.ThemeSizeName) float32 {
	return t.base.Size(name)
}
