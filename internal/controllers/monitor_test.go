package controllers

import (
	"errors"
	"fmt"
	"image"
	"testing"
	"time"

	"posture-watch/internal/capture"
	"posture-watch/internal/pose"
	"posture-watch/internal/posture"
	"posture-watch/internal/views/theme"

	"gocv.io/x/gocv"
)

type fakeSource struct {
	reads  int
	closes int
	fail   error
}

func (f *fakeSource) Read(frame *gocv.Mat) error {
	f.reads++
	if f.fail != nil {
		return f.fail
	}
	img := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer img.Close()
	img.CopyTo(frame)
	return nil
}

func (f *fakeSource) Close() error {
	f.closes++
	return nil
}

type fakeDetector struct {
	angles  map[[3]int]float64
	poseErr error
	closes  int
}

func withAngles(front, left, right float64) *fakeDetector {
	return &fakeDetector{angles: map[[3]int]float64{
		FrontPostureJoints():  front,
		LeftShoulderJoints():  left,
		RightShoulderJoints(): right,
	}}
}

func (f *fakeDetector) FindPose(*gocv.Mat) error { return f.poseErr }

func (f *fakeDetector) Position(*gocv.Mat) ([]pose.Landmark, error) {
	return []pose.Landmark{{ID: pose.Nose}}, nil
}

func (f *fakeDetector) FindAngle(_ *gocv.Mat, a, b, c int) (float64, error) {
	deg, ok := f.angles[[3]int{a, b, c}]
	if !ok {
		return 0, fmt.Errorf("%w: unexpected joints %d/%d/%d", pose.ErrDetection, a, b, c)
	}
	return deg, nil
}

func (f *fakeDetector) Close() error {
	f.closes++
	return nil
}

type fakeNotifier struct {
	messages []string
	err      error
}

func (f *fakeNotifier) Show(message string) error {
	f.messages = append(f.messages, message)
	return f.err
}

type fakeRecorder struct {
	alerts []posture.Angles
}

func (f *fakeRecorder) RecordAlert(a posture.Angles) error {
	f.alerts = append(f.alerts, a)
	return nil
}

func (f *fakeRecorder) Shutdown() {}

type fakeView struct {
	frames   []image.Image
	statuses []string
	themes   []*theme.Palette
}

func (f *fakeView) SetFrame(img image.Image)    { f.frames = append(f.frames, img) }
func (f *fakeView) SetStatus(status string)     { f.statuses = append(f.statuses, status) }
func (f *fakeView) ApplyTheme(p *theme.Palette) { f.themes = append(f.themes, p) }

// manualScheduler queues callbacks until the test runs them.
type manualScheduler struct {
	queue  []func()
	delays []time.Duration
}

func (m *manualScheduler) After(delay time.Duration, fn func()) {
	m.queue = append(m.queue, fn)
	m.delays = append(m.delays, delay)
}

func (m *manualScheduler) RunNext(t *testing.T) {
	t.Helper()
	if len(m.queue) == 0 {
		t.Fatal("no tick scheduled")
	}
	fn := m.queue[0]
	m.queue = m.queue[1:]
	fn()
}

type harness struct {
	source    *fakeSource
	detector  *fakeDetector
	notifier  *fakeNotifier
	recorder  *fakeRecorder
	scheduler *manualScheduler
	view      *fakeView
	mc        *MonitorController
}

func newHarness(t *testing.T, detector *fakeDetector) *harness {
	t.Helper()
	h := &harness{
		source:    &fakeSource{},
		detector:  detector,
		notifier:  &fakeNotifier{},
		recorder:  &fakeRecorder{},
		scheduler: &manualScheduler{},
		view:      &fakeView{},
	}
	h.mc = NewMonitorController(h.source, h.detector, h.notifier, h.recorder, h.scheduler, nil, MonitorConfig{
		Refresh:      10 * time.Millisecond,
		AlertMessage: "!",
	})
	h.mc.SetView(h.view)
	t.Cleanup(func() { h.mc.Close() })
	return h
}

func TestGoodPostureRaisesNoAlert(t *testing.T) {
	h := newHarness(t, withAngles(85, 315, 45))

	h.mc.Start()

	if len(h.notifier.messages) != 0 {
		t.Errorf("expected no notification, got %d", len(h.notifier.messages))
	}
	if len(h.view.frames) != 1 {
		t.Errorf("expected one rendered frame, got %d", len(h.view.frames))
	}
	if len(h.scheduler.queue) != 1 {
		t.Errorf("expected the next tick to be armed")
	}
	if h.scheduler.delays[0] != 10*time.Millisecond {
		t.Errorf("refresh delay: got %v", h.scheduler.delays[0])
	}
}

func TestBadPostureRaisesOneAlertPerTick(t *testing.T) {
	h := newHarness(t, withAngles(60, 315, 45))

	h.mc.Start()
	if len(h.notifier.messages) != 1 || h.notifier.messages[0] != "!" {
		t.Fatalf("expected one notification, got %v", h.notifier.messages)
	}
	if len(h.recorder.alerts) != 1 || h.recorder.alerts[0].Front != 60 {
		t.Errorf("expected one journaled alert, got %+v", h.recorder.alerts)
	}

	h.scheduler.RunNext(t)
	h.scheduler.RunNext(t)
	if len(h.notifier.messages) != 3 {
		t.Errorf("every bad tick alerts: got %d notifications, want 3", len(h.notifier.messages))
	}
}

func TestNotificationFailureDoesNotStopCycle(t *testing.T) {
	h := newHarness(t, withAngles(60, 315, 45))
	h.notifier.err = errors.New("toast service down")

	h.mc.Start()
	h.scheduler.RunNext(t)

	if !h.mc.IsPlaying() {
		t.Error("monitor should keep playing")
	}
	if len(h.scheduler.queue) != 1 {
		t.Errorf("next tick should still be armed")
	}
}

func TestDetectionFailureSkipsClassification(t *testing.T) {
	det := withAngles(60, 315, 45)
	det.poseErr = fmt.Errorf("%w: no pose found", pose.ErrDetection)
	h := newHarness(t, det)

	h.mc.Start()

	if len(h.notifier.messages) != 0 {
		t.Errorf("no alert expected without landmarks")
	}
	if len(h.view.frames) != 1 {
		t.Errorf("frame should still render")
	}
	if len(h.scheduler.queue) != 1 {
		t.Errorf("cycle should continue")
	}
}

func TestMissingLandmarkSkipsClassification(t *testing.T) {
	det := &fakeDetector{angles: map[[3]int]float64{FrontPostureJoints(): 60}}
	h := newHarness(t, det)

	h.mc.Start()

	if len(h.notifier.messages) != 0 {
		t.Errorf("partial readings must not alert")
	}
}

func TestCaptureFailureEndsSession(t *testing.T) {
	h := newHarness(t, withAngles(85, 315, 45))
	h.source.fail = fmt.Errorf("%w: device gone", capture.ErrCapture)

	h.mc.Start()

	if h.mc.IsPlaying() {
		t.Error("capture failure should stop the monitor")
	}
	if len(h.scheduler.queue) != 0 {
		t.Error("no tick should be armed after a capture failure")
	}
	if n := len(h.view.statuses); n == 0 || h.view.statuses[n-1] == "Monitoring posture" {
		t.Errorf("capture error should be surfaced, statuses: %v", h.view.statuses)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	h := newHarness(t, withAngles(85, 315, 45))

	h.mc.Start()
	h.mc.Start()

	if h.source.reads != 1 {
		t.Errorf("second Start should not run a tick, reads=%d", h.source.reads)
	}
	if len(h.scheduler.queue) != 1 {
		t.Errorf("expected exactly one armed tick, got %d", len(h.scheduler.queue))
	}
}

func TestStopLetsArmedTickFinishWithoutRendering(t *testing.T) {
	h := newHarness(t, withAngles(60, 315, 45))

	h.mc.Start()
	h.mc.Stop()
	h.scheduler.RunNext(t)

	if len(h.notifier.messages) != 2 {
		t.Errorf("armed tick should still alert: got %d", len(h.notifier.messages))
	}
	if len(h.view.frames) != 1 {
		t.Errorf("armed tick after Stop must not render: got %d frames", len(h.view.frames))
	}
	if len(h.scheduler.queue) != 0 {
		t.Errorf("no tick should be armed after Stop")
	}
}

func TestStopStartKeepsSameSourceAndSingleChain(t *testing.T) {
	h := newHarness(t, withAngles(85, 315, 45))

	h.mc.Start()
	h.mc.Stop()
	h.mc.Start()

	if h.source.closes != 0 {
		t.Errorf("camera must not be released on stop/start")
	}
	if len(h.scheduler.queue) != 1 {
		t.Fatalf("restart before the armed tick fires must not fork the cycle: %d armed", len(h.scheduler.queue))
	}

	h.scheduler.RunNext(t)
	if len(h.scheduler.queue) != 1 || len(h.view.frames) != 2 {
		t.Errorf("cycle should resume: armed=%d frames=%d", len(h.scheduler.queue), len(h.view.frames))
	}

	h.scheduler.RunNext(t)
	h.mc.Stop()
	h.scheduler.RunNext(t)
	h.mc.Start()
	if h.source.reads != 5 || len(h.scheduler.queue) != 1 {
		t.Errorf("start after the chain ended should run a fresh tick: reads=%d armed=%d", h.source.reads, len(h.scheduler.queue))
	}
}

func TestWarmupRunsOneSilentTick(t *testing.T) {
	h := newHarness(t, withAngles(60, 315, 45))

	h.mc.Warmup()

	if h.source.reads != 1 {
		t.Errorf("warm-up reads one frame, got %d", h.source.reads)
	}
	if len(h.notifier.messages) != 1 {
		t.Errorf("warm-up still alerts, got %d", len(h.notifier.messages))
	}
	if len(h.view.frames) != 0 || len(h.scheduler.queue) != 0 {
		t.Errorf("warm-up must neither render nor reschedule")
	}
	if h.mc.IsPlaying() {
		t.Error("warm-up leaves the monitor stopped")
	}
}

func TestCloseReleasesOnce(t *testing.T) {
	h := newHarness(t, withAngles(85, 315, 45))

	h.mc.Start()
	if err := h.mc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	h.mc.Close()
	h.mc.Shutdown()

	if h.source.closes != 1 {
		t.Errorf("camera released %d times, want 1", h.source.closes)
	}
	if h.detector.closes != 1 {
		t.Errorf("detector released %d times, want 1", h.detector.closes)
	}

	h.scheduler.RunNext(t)
	if h.source.reads != 1 {
		t.Errorf("armed tick after Close must not read")
	}
}

func TestCloseWithoutStop(t *testing.T) {
	h := newHarness(t, withAngles(85, 315, 45))
	h.mc.Close()

	if h.source.closes != 1 {
		t.Errorf("camera released %d times, want 1", h.source.closes)
	}
}

func TestToggleThemeRoundTrip(t *testing.T) {
	h := newHarness(t, withAngles(85, 315, 45))

	if h.mc.Palette() != theme.Light {
		t.Fatalf("initial theme should be light")
	}
	h.mc.ToggleTheme()
	if h.mc.Palette() != theme.Dark {
		t.Errorf("first toggle should select dark")
	}
	h.mc.ToggleTheme()
	if h.mc.Palette() != theme.Light {
		t.Errorf("second toggle should restore light")
	}

	want := []*theme.Palette{theme.Light, theme.Dark, theme.Light}
	if len(h.view.themes) != len(want) {
		t.Fatalf("applied themes: got %d, want %d", len(h.view.themes), len(want))
	}
	for i := range want {
		if h.view.themes[i] != want[i] {
			t.Errorf("theme %d: got %s, want %s", i, h.view.themes[i].Name, want[i].Name)
		}
	}
}

func TestSetupAndSelectionHaveNoSideEffects(t *testing.T) {
	h := newHarness(t, withAngles(85, 315, 45))

	h.mc.SelectPerson("Ana")
	h.mc.Setup()

	if h.mc.Selected() != "Ana" {
		t.Errorf("selected: got %q", h.mc.Selected())
	}
	if h.source.reads != 0 || h.mc.IsPlaying() {
		t.Error("setup and selection must not touch the cycle")
	}
}

func TestTickTimingsRecorded(t *testing.T) {
	h := newHarness(t, withAngles(85, 315, 45))

	h.mc.Start()
	h.scheduler.RunNext(t)

	timings := h.mc.Timings()
	for _, stage := range []string{"tick", "capture", "detect", "render"} {
		if n := len(timings.GetTimings(stage)); n != 2 {
			t.Errorf("%s: got %d samples, want 2", stage, n)
		}
	}
	ticks, alerts := h.mc.Stats()
	if ticks != 2 || alerts != 0 {
		t.Errorf("stats: ticks=%d alerts=%d", ticks, alerts)
	}
}

func TestJointTriples(t *testing.T) {
	tests := []struct {
		name   string
		joints func() [3]int
		want   [3]int
	}{
		{"front", FrontPostureJoints, [3]int{11, 0, 12}},
		{"left shoulder", LeftShoulderJoints, [3]int{9, 11, 12}},
		{"right shoulder", RightShoulderJoints, [3]int{10, 12, 11}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.joints()
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			got[0] = -1
			if again := tc.joints(); again != tc.want {
				t.Errorf("triple changed after caller mutation: %v", again)
			}
		})
	}
}
