// Package notify raises transient desktop alerts.
package notify

import (
	"errors"

	"fyne.io/fyne/v2"
)

var ErrUnavailable = errors.New("notifications unavailable")

// Notifier shows a best-effort alert. Implementations must not block.
type Notifier interface {
	Show(message string) error
}

// Desktop sends alerts through the platform notification service of a fyne app.
type Desktop struct {
	app   fyne.App
	title string
}

func NewDesktop(app fyne.App, title string) *Desktop {
	return &Desktop{app: app, title: title}
}

func (d *Desktop) Show(message string) error {
	if d.app == nil {
		return ErrUnavailable
	}
	d.app.SendNotification(fyne.NewNotification(d.title, message))
	return nil
}
