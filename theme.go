package main

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"sysmon-gui/internal/config"
)

// PanelTheme wraps the default fyne theme. In matrix mode text, bars and
// accents are phosphor green on near black.
type PanelTheme struct {
	matrix bool
}

var _ fyne.Theme = (*PanelTheme)(nil)

var (
	matrixGreen      = color.NRGBA{R: 0, G: 255, B: 65, A: 255} // #00FF41
	matrixDimGreen   = color.NRGBA{R: 0, G: 180, B: 45, A: 255}
	matrixBackground = color.NRGBA{R: 10, G: 10, B: 10, A: 255}
)

func newPanelTheme(name string) *PanelTheme {
	return &PanelTheme{matrix: name == config.ThemeMatrix}
}

func (m PanelTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if !m.matrix {
		return theme.DefaultTheme().Color(name, variant)
	}
	switch name {
	case theme.ColorNameForeground, theme.ColorNamePrimary:
		return matrixGreen
	case theme.ColorNameDisabled, theme.ColorNamePlaceHolder:
		return matrixDimGreen
	case theme.ColorNameBackground, theme.ColorNameInputBackground:
		return matrixBackground
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (m PanelTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (m PanelTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (m PanelTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}
