//go:build !libretro

// Package standalone runs a session in its own ebiten window with oto
// audio, keyboard and gamepad input, save state slots and screenshots.
package standalone

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/user-none/pockystation/engine"
	"github.com/user-none/pockystation/session"
	"github.com/user-none/pockystation/standalone/storage"
	"github.com/user-none/pockystation/wavwriter"
)

// dataDirName names the per-user data directory.
const dataDirName = "pockystation"

// Options selects what Run loads. Empty fields fall back to config.json
// and then to the data directory defaults.
type Options struct {
	Path      string // storage image, raw or archived
	SystemDir string // firmware search directory
	SaveDir   string // save state root
	Scale     int    // window scale, 0 for the configured one
	WAVPath   string // record audio output here when set
}

// request is an action the ebiten thread asks the emulation goroutine to
// perform on the session.
type request int

const (
	reqSaveState request = iota
	reqLoadState
	reqNextSlot
	reqReset
)

// requestQueueLen bounds pending requests; extra key presses are dropped.
const requestQueueLen = 8

// runner implements ebiten.Game. The emulation goroutine owns sess; the
// ebiten thread only talks to it through shared state and requests.
type runner struct {
	sess        *session.Session
	logger      *slog.Logger
	config      *storage.Config
	inputMap    InputMapping
	renderer    *FramebufferRenderer
	audioPlayer *AudioPlayer
	wav         *wavwriter.WavWriter
	saves       *SaveStateManager
	screenshots *ScreenshotManager
	storageSync *storageSync
	emuControl  *EmuControl
	sharedInput *SharedInput
	sharedFB    *SharedFramebuffer
	requests    chan request
	emuDone     chan struct{}

	frameTime    time.Duration
	adtMinBuffer int
	adtMaxBuffer int
	focusPaused  bool
}

// Run loads opts.Path and runs it until the window is closed. The storage
// image is written back on exit if it changed.
func Run(factory engine.Factory, opts Options) error {
	logger := slog.Default()
	info := factory.SystemInfo()

	storage.Init(dataDirName)
	if err := storage.EnsureDirectories(); err != nil {
		return err
	}

	if err := storage.CreateConfigIfMissing(); err != nil {
		logger.Warn("couldn't create config.json", "err", err)
	}
	config, issues, err := storage.LoadValidConfig(coreOptionValues())
	if err != nil {
		return err
	}
	for _, issue := range issues {
		logger.Warn("correcting configuration", "issue", issue)
	}

	systemDir, saveRoot, err := resolveDirs(opts, config)
	if err != nil {
		return err
	}
	scale := resolveScale(opts.Scale, config.Window.Scale)

	screenshotDir, err := storage.GetScreenshotDir()
	if err != nil {
		return err
	}

	r := &runner{
		logger:       logger,
		config:       config,
		inputMap:     BuildMappingFromConfig(config.Input.Keyboard, config.Input.Controller),
		renderer:     NewFramebufferRenderer(engine.ScreenWidth, engine.ScreenHeight),
		saves:        NewSaveStateManager(storage.StorageSaveDir(saveRoot, opts.Path)),
		screenshots:  NewScreenshotManager(screenshotDir, scale, true),
		emuControl:   NewEmuControl(),
		sharedInput:  &SharedInput{},
		sharedFB:     NewSharedFramebuffer(engine.ScreenWidth, engine.ScreenHeight),
		requests:     make(chan request, requestQueueLen),
		emuDone:      make(chan struct{}),
		frameTime:    time.Second / 60,
		adtMinBuffer: 3 * bytesPerFrame(info.SampleRate),
		adtMaxBuffer: 6 * bytesPerFrame(info.SampleRate),
	}

	var outputs []audioOutput
	volume := config.Audio.Volume
	if config.Audio.Muted {
		volume = 0
	}
	if r.audioPlayer, err = NewAudioPlayer(info.SampleRate, volume); err != nil {
		logger.Warn("audio initialization failed, running silent", "err", err)
	} else {
		outputs = append(outputs, r.audioPlayer)
	}
	if opts.WAVPath != "" {
		if r.wav, err = wavwriter.New(opts.WAVPath, info.SampleRate); err != nil {
			r.closeAudio()
			return err
		}
		outputs = append(outputs, r.wav)
		logger.Info("recording audio", "path", opts.WAVPath)
	}

	host := newEmuHost(systemDir, r.sharedInput, r.sharedFB, config.CoreOptions, outputs...)
	r.sess, err = session.New(factory, host, opts.Path, logger)
	if err != nil {
		r.closeAudio()
		return fmt.Errorf("failed to start session: %w", err)
	}

	r.storageSync, err = newStorageSync(opts.Path, r.sess.Storage())
	if err != nil {
		r.closeAudio()
		return err
	}
	if !r.storageSync.writable {
		logger.Info("storage image is archived, changes will not be saved", "path", opts.Path)
	}

	ebiten.SetWindowTitle(info.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(engine.ScreenWidth*scale, engine.ScreenHeight*scale)
	ebiten.SetWindowSizeLimits(engine.ScreenWidth*storage.MinWindowScale, engine.ScreenHeight*storage.MinWindowScale, -1, -1)
	ebiten.SetFullscreen(config.Window.Fullscreen)
	ebiten.SetTPS(60)

	go r.emulationLoop()

	err = ebiten.RunGame(r)

	if cerr := r.Close(); err == nil {
		err = cerr
	}
	return err
}

// coreOptionValues returns the legal values of every session option.
func coreOptionValues() map[string][]string {
	m := make(map[string][]string, len(session.Options))
	for _, opt := range session.Options {
		m[opt.Key] = opt.Values
	}
	return m
}

// resolveDirs picks the firmware and save state directories: command line
// first, then config.json, then the data directory.
func resolveDirs(opts Options, config *storage.Config) (systemDir, saveRoot string, err error) {
	systemDir = firstNonEmpty(opts.SystemDir, config.Paths.SystemDir)
	if systemDir == "" {
		if systemDir, err = storage.GetSystemDir(); err != nil {
			return "", "", err
		}
	}
	saveRoot = firstNonEmpty(opts.SaveDir, config.Paths.SaveDir)
	if saveRoot == "" {
		if saveRoot, err = storage.GetSavesDir(); err != nil {
			return "", "", err
		}
	}
	return systemDir, saveRoot, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveScale prefers the requested scale over the configured one and
// clamps the result to the window scale limits.
func resolveScale(requested, configured int) int {
	scale := configured
	if requested > 0 {
		scale = requested
	}
	if scale < storage.MinWindowScale {
		scale = storage.MinWindowScale
	}
	if scale > storage.MaxWindowScale {
		scale = storage.MaxWindowScale
	}
	return scale
}

// bytesPerFrame is the stereo 16-bit audio produced in one 60Hz frame.
func bytesPerFrame(sampleRate int) int {
	return sampleRate / 60 * 4
}

// emulationLoop runs on a dedicated goroutine, paced by the frame time and
// nudged by the audio buffer level.
func (r *runner) emulationLoop() {
	defer close(r.emuDone)

	lastFrameTime := time.Now()
	for {
		if !r.emuControl.CheckPause() {
			return
		}

		r.drainRequests()
		r.sess.StepFrame()

		sleepTime := r.frameTime - time.Since(lastFrameTime)
		if r.audioPlayer != nil {
			level := r.audioPlayer.GetBufferLevel()
			if level < r.adtMinBuffer {
				sleepTime = time.Duration(float64(sleepTime) * 0.9)
			} else if level > r.adtMaxBuffer {
				sleepTime = time.Duration(float64(sleepTime) * 1.1)
			}
		}
		if sleepTime > time.Millisecond {
			time.Sleep(sleepTime)
		}

		lastFrameTime = time.Now()
	}
}

func (r *runner) drainRequests() {
	for {
		select {
		case req := <-r.requests:
			r.handleRequest(req)
		default:
			return
		}
	}
}

// handleRequest runs on the emulation goroutine.
func (r *runner) handleRequest(req request) {
	switch req {
	case reqSaveState:
		if err := r.saves.Save(r.sess); err != nil {
			r.logger.Warn("save state failed", "slot", r.saves.GetCurrentSlot(), "err", err)
			return
		}
		r.logger.Info("state saved", "slot", r.saves.GetCurrentSlot())
	case reqLoadState:
		if err := r.saves.Load(r.sess); err != nil {
			r.logger.Warn("load state failed", "slot", r.saves.GetCurrentSlot(), "err", err)
			return
		}
		if r.audioPlayer != nil {
			r.audioPlayer.ClearQueue()
		}
		r.logger.Info("state loaded", "slot", r.saves.GetCurrentSlot())
	case reqNextSlot:
		r.saves.NextSlot()
		r.logger.Info("save slot selected", "slot", r.saves.GetCurrentSlot())
	case reqReset:
		r.sess.Reset()
		r.logger.Info("reset")
	}
}

// request queues req for the emulation goroutine without blocking.
func (r *runner) request(req request) {
	select {
	case r.requests <- req:
	default:
		r.logger.Warn("too many pending requests, dropping key press")
	}
}

// Update implements ebiten.Game.
func (r *runner) Update() error {
	r.pollInputToShared()
	r.updateFocus()

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		r.request(reqSaveState)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		r.request(reqNextSlot)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		r.request(reqLoadState)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		r.request(reqReset)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		r.takeScreenshot()
	}

	return nil
}

// updateFocus pauses emulation while the window is in the background.
func (r *runner) updateFocus() {
	focused := ebiten.IsFocused()
	if !focused && !r.focusPaused {
		r.emuControl.RequestPause()
		r.focusPaused = true
	} else if focused && r.focusPaused {
		r.emuControl.RequestResume()
		r.focusPaused = false
	}
}

func (r *runner) takeScreenshot() {
	pixels, frames := r.sharedFB.Read()
	if frames == 0 {
		return
	}
	w, h := r.sharedFB.Size()
	path, err := r.screenshots.TakeScreenshot(pixels, w, h, time.Now())
	if err != nil {
		r.logger.Warn("screenshot failed", "err", err)
		return
	}
	r.logger.Info("screenshot saved", "path", path)
}

// Draw implements ebiten.Game.
func (r *runner) Draw(screen *ebiten.Image) {
	pixels, frames := r.sharedFB.Read()
	if frames == 0 {
		return
	}
	r.renderer.DrawFramebuffer(screen, pixels)
}

// Layout implements ebiten.Game.
func (r *runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := 1.0
	if m := ebiten.Monitor(); m != nil {
		s = m.DeviceScaleFactor()
	}
	return int(float64(outsideWidth) * s), int(float64(outsideHeight) * s)
}

// pollInputToShared reads keyboard and the first gamepad.
func (r *runner) pollInputToShared() {
	gamepadIDs := ebiten.AppendGamepadIDs(nil)
	hasGamepad := len(gamepadIDs) > 0

	var gamepadID ebiten.GamepadID
	if hasGamepad {
		gamepadID = gamepadIDs[0]
	}

	r.sharedInput.Set(PollControls(r.inputMap, gamepadID, hasGamepad, r.config.Input.DisableAnalogStick))
}

// Close stops emulation, writes the storage image back and releases
// audio. The first write-back or recording error is returned.
func (r *runner) Close() error {
	r.emuControl.Stop()
	<-r.emuDone

	var firstErr error
	written, err := r.storageSync.Flush(r.sess.Storage())
	if err != nil {
		r.logger.Error("couldn't save storage image", "path", r.storageSync.path, "err", err)
		firstErr = err
	} else if written {
		r.logger.Info("storage image saved", "path", r.storageSync.path)
	}

	if err := r.closeAudio(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (r *runner) closeAudio() error {
	if r.audioPlayer != nil {
		r.audioPlayer.Close()
	}
	if r.wav != nil {
		if err := r.wav.Close(); err != nil {
			r.logger.Error("couldn't finish audio recording", "path", r.wav.Filename(), "err", err)
			return err
		}
	}
	return nil
}
