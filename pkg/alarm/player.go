// Package alarm plays the audible drowsiness alert. Playback goes
// through whatever command-line audio player the host has; when none
// works, the terminal bell is the fallback so the alert never silently
// disappears.
package alarm

import (
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/sleepdriver/go-sleepdriver/internal/log"
)

// Player triggers and stops the alert sound. Safe for use from the
// monitor loop plus the dashboard's stop path.
type Player struct {
	soundFile string
	volume    float64
	silent    bool

	mu      sync.Mutex
	cmd     *exec.Cmd
	playing bool

	// Callbacks for UI state
	OnPlaybackStart func()
	OnPlaybackEnd   func()
}

// candidate players in preference order; args receive the sound path.
var players = []struct {
	bin  string
	args func(path string, volume float64) []string
}{
	{bin: "ffplay", args: func(p string, v float64) []string {
		return []string{"-nodisp", "-autoexit", "-loglevel", "quiet",
			"-volume", fmt.Sprintf("%d", int(v*100)), p}
	}},
	{bin: "paplay", args: func(p string, v float64) []string {
		return []string{"--volume", fmt.Sprintf("%d", int(v*65536)), p}
	}},
	{bin: "aplay", args: func(p string, _ float64) []string {
		return []string{"-q", p}
	}},
	{bin: "afplay", args: func(p string, v float64) []string {
		return []string{"-v", fmt.Sprintf("%.2f", v), p}
	}},
}

// NewPlayer creates a player for the given sound file. silent disables
// audio entirely (the monitor still logs and displays alerts).
func NewPlayer(soundFile string, volume float64, silent bool) *Player {
	return &Player{
		soundFile: soundFile,
		volume:    volume,
		silent:    silent,
	}
}

// Play starts the alert sound asynchronously. Errors degrade to the
// terminal bell; they never propagate to the caller, because alarm
// playback must not disturb the detection loop.
func (p *Player) Play() {
	if p.silent {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return
	}

	cmd := p.buildCommand()
	if cmd == nil {
		log.Warn("no audio player available, falling back to terminal bell")
		bell()
		return
	}

	if err := cmd.Start(); err != nil {
		log.Error("alarm playback failed", "player", cmd.Path, "error", err)
		bell()
		return
	}

	p.cmd = cmd
	p.playing = true
	if p.OnPlaybackStart != nil {
		p.OnPlaybackStart()
	}
	log.Info("alarm sound playing", "file", p.soundFile)

	go func() {
		cmd.Wait()
		p.mu.Lock()
		p.playing = false
		p.cmd = nil
		done := p.OnPlaybackEnd
		p.mu.Unlock()
		if done != nil {
			done()
		}
	}()
}

// Stop cuts off a playing alert, used when the driver recovers.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	p.playing = false
	p.cmd = nil
}

// Playing reports whether the alert sound is currently audible.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// buildCommand picks the first available player binary. Returns nil
// when the sound file is missing or no player is installed.
func (p *Player) buildCommand() *exec.Cmd {
	if _, err := os.Stat(p.soundFile); err != nil {
		log.Warn("alarm sound file missing", "file", p.soundFile)
		return nil
	}
	for _, c := range players {
		bin, err := exec.LookPath(c.bin)
		if err != nil {
			continue
		}
		return exec.Command(bin, c.args(p.soundFile, p.volume)...)
	}
	return nil
}

// bell rings the terminal bell three times, the alert of last resort.
func bell() {
	fmt.Print("\a\a\a")
}
