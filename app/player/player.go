package player

import (
	"cmp"
	"fmt"
	"log/slog"
	"os/exec"
)

// Player hands a video URL to an external media player.
type Player interface {
	Play(url string) error
}

type PlayError struct {
	Err error
}

func (e *PlayError) Error() string {
	return fmt.Sprintf("failed to play video: %v", e.Err)
}

func (e *PlayError) Unwrap() error {
	return e.Err
}

// MissingDependencyError names a required binary that is not on PATH.
type MissingDependencyError struct {
	Binary string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s is not installed. Please install %s to play videos.", e.Binary, e.Binary)
}

var _ Player = (*MpvPlayer)(nil)

// MpvPlayer launches mpv, which streams YouTube URLs through yt-dlp.
type MpvPlayer struct {
	binary string
}

// NewMpvPlayer fails with *MissingDependencyError when mpv or its yt-dlp
// helper cannot be found.
func NewMpvPlayer(binary, ytDlpBinary string) (*MpvPlayer, error) {
	binary = cmp.Or(binary, "mpv")
	ytDlpBinary = cmp.Or(ytDlpBinary, "yt-dlp")

	if err := CheckDependencies(binary, ytDlpBinary); err != nil {
		return nil, err
	}

	return &MpvPlayer{binary: binary}, nil
}

func CheckDependencies(binaries ...string) error {
	for _, binary := range binaries {
		if _, err := exec.LookPath(binary); err != nil {
			return &MissingDependencyError{Binary: binary}
		}
	}
	return nil
}

// Play starts the player and returns without waiting for it to exit.
func (p *MpvPlayer) Play(url string) error {
	// stdio left nil is connected to /dev/null
	cmd := exec.Command(p.binary, url)

	if err := cmd.Start(); err != nil {
		return &PlayError{Err: err}
	}

	slog.Debug("Player started", "binary", p.binary, "pid", cmd.Process.Pid, "url", url)

	go func() {
		// reap the child so it does not linger as a zombie
		_ = cmd.Wait()
	}()

	return nil
}
