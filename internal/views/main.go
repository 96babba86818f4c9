package views

import (
	"image"

	"posture-watch/internal/views/components"
	"posture-watch/internal/views/theme"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// MainView is the monitor window: controls on the left, the camera feed
// in the centre, status along the bottom.
type MainView struct {
	app           fyne.App
	window        fyne.Window
	mainContainer *fyne.Container
	controls      *components.Controls
	imageDisplay  *components.ImageDisplay
	statusBar     *components.StatusBar

	quitHandler func()
}

// NewMainView builds the window content. people fills the dropdown.
func NewMainView(app fyne.App, window fyne.Window, people []string) *MainView {
	view := &MainView{
		app:    app,
		window: window,
	}

	view.controls = components.NewControls(people)
	view.imageDisplay = components.NewImageDisplay()
	view.statusBar = components.NewStatusBar()

	view.buildLayout()
	view.bindKeys()

	return view
}

func (mv *MainView) buildLayout() {
	mv.mainContainer = container.NewBorder(
		nil,
		mv.statusBar.GetContainer(),
		container.NewPadded(mv.controls.GetContainer()),
		nil,
		container.NewPadded(mv.imageDisplay.GetContainer()),
	)

	mv.window.SetContent(mv.mainContainer)
}

// bindKeys makes Escape quit the application
func (mv *MainView) bindKeys() {
	mv.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name != fyne.KeyEscape {
			return
		}
		if mv.quitHandler != nil {
			mv.quitHandler()
			return
		}
		mv.app.Quit()
	})
}

// Event handler setters - called while wiring the controller

func (mv *MainView) SetStartHandler(handler func())  { mv.controls.SetStartHandler(handler) }
func (mv *MainView) SetStopHandler(handler func())   { mv.controls.SetStopHandler(handler) }
func (mv *MainView) SetSetupHandler(handler func())  { mv.controls.SetSetupHandler(handler) }
func (mv *MainView) SetThemeHandler(handler func())  { mv.controls.SetThemeHandler(handler) }
func (mv *MainView) SetPersonHandler(h func(string)) { mv.controls.SetPersonHandler(h) }

// SetQuitHandler overrides what Escape does
func (mv *MainView) SetQuitHandler(handler func()) {
	mv.quitHandler = handler
}

// UI update methods - called by the controller

// SetFrame shows the latest annotated frame
func (mv *MainView) SetFrame(img image.Image) {
	fyne.Do(func() {
		mv.imageDisplay.SetFrame(img)
	})
}

// SetStatus updates the status bar message
func (mv *MainView) SetStatus(status string) {
	fyne.Do(func() {
		mv.statusBar.SetStatus(status)
	})
}

// ApplyTheme installs p as the application theme. Applying the same palette
// again leaves the window unchanged.
func (mv *MainView) ApplyTheme(p *theme.Palette) {
	fyne.Do(func() {
		mv.app.Settings().SetTheme(theme.New(p))
		mv.imageDisplay.SetBorderColor(p.Text)
	})
}

func (mv *MainView) Show() {
	mv.window.Show()
}

func (mv *MainView) GetWindow() fyne.Window {
	return mv.window
}

func (mv *MainView) GetControls() *components.Controls {
	return mv.controls
}

func (mv *MainView) GetImageDisplay() *components.ImageDisplay {
	return mv.imageDisplay
}

func (mv *MainView) GetStatusBar() *components.StatusBar {
	return mv.statusBar
}
