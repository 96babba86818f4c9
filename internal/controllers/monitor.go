package controllers

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"posture-watch/internal/debug/timing"
	"posture-watch/internal/journal"
	"posture-watch/internal/logger"
	"posture-watch/internal/notify"
	"posture-watch/internal/opencv/conversion"
	"posture-watch/internal/pose"
	"posture-watch/internal/posture"
	"posture-watch/internal/views/theme"

	"gocv.io/x/gocv"
)

const component = "Monitor"

// FrontPostureJoints is the shoulder-nose-shoulder triple for the front angle.
func FrontPostureJoints() [3]int {
	return [3]int{pose.LeftShoulder, pose.Nose, pose.RightShoulder}
}

// LeftShoulderJoints measures the left shoulder against the mouth corner.
func LeftShoulderJoints() [3]int {
	return [3]int{pose.MouthLeft, pose.LeftShoulder, pose.RightShoulder}
}

// RightShoulderJoints measures the right shoulder against the mouth corner.
func RightShoulderJoints() [3]int {
	return [3]int{pose.MouthRight, pose.RightShoulder, pose.LeftShoulder}
}

// FrameSource yields camera frames.
type FrameSource interface {
	Read(frame *gocv.Mat) error
	Close() error
}

// View is what the monitor drives on screen.
type View interface {
	SetFrame(img image.Image)
	SetStatus(status string)
	ApplyTheme(p *theme.Palette)
}

// MonitorConfig holds the monitor's tunables
type MonitorConfig struct {
	Refresh      time.Duration
	AlertMessage string
}

// MonitorController runs the capture -> detect -> classify -> notify -> render
// cycle and reacts to the window's controls. Every method is expected to run
// on the UI goroutine; the mutex only guards against Close arriving from a
// signal handler.
type MonitorController struct {
	source    FrameSource
	detector  pose.Detector
	notifier  notify.Notifier
	recorder  journal.Recorder
	scheduler Scheduler
	logger    logger.Logger
	config    MonitorConfig

	mu        sync.Mutex
	view      View
	playing   bool
	pending   bool
	closed    bool
	palette   *theme.Palette
	selected  string
	frame     gocv.Mat
	converter *conversion.FrameConverter
	timings   *timing.Tracker
	ticks     uint64
	alerts    uint64
}

func NewMonitorController(
	source FrameSource,
	detector pose.Detector,
	notifier notify.Notifier,
	recorder journal.Recorder,
	scheduler Scheduler,
	log logger.Logger,
	config MonitorConfig,
) *MonitorController {
	if recorder == nil {
		recorder = journal.Nop()
	}
	if log == nil {
		log = logger.Nop()
	}

	return &MonitorController{
		source:    source,
		detector:  detector,
		notifier:  notifier,
		recorder:  recorder,
		scheduler: scheduler,
		logger:    log,
		config:    config,
		palette:   theme.Light,
		frame:     gocv.NewMat(),
		converter: conversion.NewFrameConverter(),
		timings:   timing.NewTracker(timing.DefaultWindow),
	}
}

// SetView attaches the window and paints the current theme onto it.
func (mc *MonitorController) SetView(view View) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.view = view
	if view != nil {
		view.ApplyTheme(mc.palette)
	}
}

// Warmup runs a single tick while stopped: detection, classification and
// alerting happen, nothing is drawn and nothing is rescheduled.
func (mc *MonitorController) Warmup() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.playing || mc.closed {
		return
	}
	mc.logger.Debug(component, "warm-up tick", nil)
	mc.tickLocked()
}

// Start begins the refresh cycle. It is a no-op while already playing.
func (mc *MonitorController) Start() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.playing || mc.closed {
		return
	}
	mc.playing = true
	mc.setStatusLocked("Monitoring posture")
	mc.logger.Info(component, "monitoring started", nil)

	// A tick left over from before Stop is still armed and will carry on.
	if mc.pending {
		return
	}
	mc.tickLocked()
}

// Stop halts rescheduling. A tick already armed still runs its detection
// and alerting but draws nothing and arms no further tick.
func (mc *MonitorController) Stop() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if !mc.playing {
		return
	}
	mc.playing = false
	mc.setStatusLocked("Stopped")
	mc.logger.Info(component, "monitoring stopped", mc.summaryLocked())
}

// Setup is reserved; configuration editing is not available.
func (mc *MonitorController) Setup() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.logger.Debug(component, "setup requested", nil)
	mc.setStatusLocked("Setup is not available yet")
}

// SelectPerson records the dropdown choice. It has no effect on monitoring.
func (mc *MonitorController) SelectPerson(name string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.selected = name
	mc.logger.Debug(component, "person selected", map[string]interface{}{"name": name})
}

// ToggleTheme swaps between the light and dark palettes.
func (mc *MonitorController) ToggleTheme() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.palette = theme.Toggle(mc.palette)
	if mc.view != nil {
		mc.view.ApplyTheme(mc.palette)
	}
	mc.logger.Debug(component, "theme changed", map[string]interface{}{"theme": mc.palette.Name})
}

func (mc *MonitorController) Palette() *theme.Palette {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.palette
}

// Selected returns the last name picked in the dropdown.
func (mc *MonitorController) Selected() string {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.selected
}

func (mc *MonitorController) IsPlaying() bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.playing
}

// Stats returns how many ticks ran and how many alerts were attempted.
func (mc *MonitorController) Stats() (ticks, alerts uint64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.ticks, mc.alerts
}

// Timings exposes per-stage tick durations.
func (mc *MonitorController) Timings() *timing.Tracker {
	return mc.timings
}

func (mc *MonitorController) summaryLocked() map[string]interface{} {
	fields := mc.timings.Averages()
	fields["ticks"] = mc.ticks
	fields["alerts"] = mc.alerts
	return fields
}

func (mc *MonitorController) scheduledTick() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.pending = false
	mc.tickLocked()
}

func (mc *MonitorController) tickLocked() {
	if mc.closed {
		return
	}
	mc.ticks++
	defer mc.timings.Start("tick")()

	endCapture := mc.timings.Start("capture")
	err := mc.source.Read(&mc.frame)
	endCapture()
	if err != nil {
		mc.playing = false
		mc.logger.Error(component, err, map[string]interface{}{"tick": mc.ticks})
		mc.setStatusLocked(fmt.Sprintf("Camera error: %v", err))
		return
	}

	endDetect := mc.timings.Start("detect")
	angles, err := mc.measure()
	endDetect()
	if err != nil {
		mc.logger.Debug(component, "no usable pose, skipping classification", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		good := angles.Good()
		mc.logger.Debug(component, "posture classified", map[string]interface{}{
			"good":           good,
			"front":          angles.Front,
			"left_shoulder":  angles.LeftShoulder,
			"right_shoulder": angles.RightShoulder,
		})
		if !good {
			mc.alertLocked(angles)
		}
	}

	if !mc.playing {
		return
	}

	mc.renderLocked()
	mc.pending = true
	mc.scheduler.After(mc.config.Refresh, mc.scheduledTick)
}

func (mc *MonitorController) measure() (posture.Angles, error) {
	var angles posture.Angles

	if err := mc.detector.FindPose(&mc.frame); err != nil {
		return angles, err
	}
	if _, err := mc.detector.Position(&mc.frame); err != nil {
		return angles, err
	}

	readings := []struct {
		joints [3]int
		dst    *float64
	}{
		{FrontPostureJoints(), &angles.Front},
		{LeftShoulderJoints(), &angles.LeftShoulder},
		{RightShoulderJoints(), &angles.RightShoulder},
	}
	for _, r := range readings {
		deg, err := mc.detector.FindAngle(&mc.frame, r.joints[0], r.joints[1], r.joints[2])
		if err != nil {
			return angles, err
		}
		*r.dst = deg
	}

	return angles, nil
}

func (mc *MonitorController) alertLocked(angles posture.Angles) {
	mc.alerts++

	if err := mc.notifier.Show(mc.config.AlertMessage); err != nil {
		mc.logger.Warning(component, "notification failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := mc.recorder.RecordAlert(angles); err != nil {
		mc.logger.Warning(component, "alert not journaled", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (mc *MonitorController) renderLocked() {
	if mc.view == nil {
		return
	}
	defer mc.timings.Start("render")()

	img, err := mc.converter.ToImage(mc.frame)
	if err != nil {
		mc.logger.Error(component, err, map[string]interface{}{"stage": "render"})
		return
	}
	mc.view.SetFrame(img)
}

func (mc *MonitorController) setStatusLocked(status string) {
	if mc.view != nil {
		mc.view.SetStatus(status)
	}
}

// Close stops the cycle and releases the camera, detector and frame
// buffers. Only the first call does anything.
func (mc *MonitorController) Close() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.closed {
		return nil
	}
	mc.closed = true
	mc.playing = false

	var errs []error
	if err := mc.source.Close(); err != nil {
		errs = append(errs, fmt.Errorf("releasing camera: %w", err))
	}
	if err := mc.detector.Close(); err != nil {
		errs = append(errs, fmt.Errorf("releasing detector: %w", err))
	}
	mc.converter.Close()
	mc.frame.Close()

	mc.logger.Info(component, "monitor closed", mc.summaryLocked())
	return errors.Join(errs...)
}

// Shutdown satisfies shutdown.Shutdownable.
func (mc *MonitorController) Shutdown() {
	if err := mc.Close(); err != nil {
		mc.logger.Error(component, err, nil)
	}
}
