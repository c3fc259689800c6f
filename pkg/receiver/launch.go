package receiver

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog/log"
)

// Launcher opens the tracking application's profile so that it starts
// sending data.
type Launcher interface {
	Launch(path string) error
}

type LauncherFunc func(path string) error

func (f LauncherFunc) Launch(path string) error {
	return f(path)
}

// SystemLauncher hands the file to the platform's default opener.
type SystemLauncher struct{}

func openCommand(path string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path)
	default:
		return exec.Command("xdg-open", path)
	}
}

func (SystemLauncher) Launch(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("profile not found: %w", err)
	}

	cmd := openCommand(path)
	if err := cmd.Start(); err != nil {
		return err
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug().Err(err).Str("path", path).Msg("profile opener exited")
		}
	}()

	return nil
}
