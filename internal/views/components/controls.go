package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// ConfigsPlaceholder is shown in the person dropdown before a choice is made.
const ConfigsPlaceholder = "Configs"

// Controls is the side panel with the monitor's buttons and person dropdown
type Controls struct {
	container    *fyne.Container
	themeButton  *widget.Button
	personSelect *widget.Select
	startButton  *widget.Button
	stopButton   *widget.Button
	setupButton  *widget.Button

	startHandler  func()
	stopHandler   func()
	setupHandler  func()
	themeHandler  func()
	personHandler func(string)
}

// NewControls creates the panel with the given dropdown entries
func NewControls(people []string) *Controls {
	c := &Controls{}
	c.createComponents(people)
	c.buildLayout()
	return c
}

func (c *Controls) createComponents(people []string) {
	c.themeButton = widget.NewButton("Toggle Theme", func() {
		if c.themeHandler != nil {
			c.themeHandler()
		}
	})

	c.personSelect = widget.NewSelect(people, func(name string) {
		if c.personHandler != nil {
			c.personHandler(name)
		}
	})
	c.personSelect.PlaceHolder = ConfigsPlaceholder

	c.startButton = widget.NewButton("Start", func() {
		if c.startHandler != nil {
			c.startHandler()
		}
	})
	c.startButton.Importance = widget.SuccessImportance

	c.stopButton = widget.NewButton("Stop", func() {
		if c.stopHandler != nil {
			c.stopHandler()
		}
	})
	c.stopButton.Importance = widget.DangerImportance

	c.setupButton = widget.NewButton("Setup", func() {
		if c.setupHandler != nil {
			c.setupHandler()
		}
	})
	c.setupButton.Importance = widget.HighImportance
}

func (c *Controls) buildLayout() {
	c.container = container.NewVBox(
		c.themeButton,
		c.personSelect,
		layout.NewSpacer(),
		c.startButton,
		c.stopButton,
		c.setupButton,
		layout.NewSpacer(),
	)
}

func (c *Controls) SetStartHandler(handler func())  { c.startHandler = handler }
func (c *Controls) SetStopHandler(handler func())   { c.stopHandler = handler }
func (c *Controls) SetSetupHandler(handler func())  { c.setupHandler = handler }
func (c *Controls) SetThemeHandler(handler func())  { c.themeHandler = handler }
func (c *Controls) SetPersonHandler(h func(string)) { c.personHandler = h }

func (c *Controls) StartButton() *widget.Button  { return c.startButton }
func (c *Controls) StopButton() *widget.Button   { return c.stopButton }
func (c *Controls) SetupButton() *widget.Button  { return c.setupButton }
func (c *Controls) ThemeButton() *widget.Button  { return c.themeButton }
func (c *Controls) PersonSelect() *widget.Select { return c.personSelect }

func (c *Controls) GetContainer() *fyne.Container {
	return c.container
}
