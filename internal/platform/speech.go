package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// ErrSpeechUnsupported indicates no text to speech command was found.
var ErrSpeechUnsupported = errors.New("text to speech unsupported")

// baseWordsPerMinute is the speaking rate used for a rate of 1.0.
const baseWordsPerMinute = 175

type argsBuilder func(text string, rate float64, voiceID string) []string

type speechEngine struct {
	name string
	args argsBuilder
}

// CommandSpeaker speaks through an external TTS command. Starting a new
// utterance interrupts the previous one.
type CommandSpeaker struct {
	mu      sync.Mutex
	path    string
	args    argsBuilder
	current *exec.Cmd
	logger  *slog.Logger
}

// NewSpeaker finds a TTS command for this OS. A non-empty command overrides
// the platform default.
func NewSpeaker(command string, logger *slog.Logger) (*CommandSpeaker, error) {
	if logger == nil {
		logger = slog.Default()
	}

	candidates := speechEngines()
	if command = strings.TrimSpace(command); command != "" {
		candidates = []speechEngine{{name: command, args: argsForCommand(command)}}
	}

	for _, engine := range candidates {
		path, err := exec.LookPath(engine.name)
		if err != nil {
			continue
		}
		logger.Debug("speech engine selected", slog.String("path", path))
		return &CommandSpeaker{path: path, args: engine.args, logger: logger}, nil
	}
	return nil, ErrSpeechUnsupported
}

// Path returns the TTS executable in use.
func (speaker *CommandSpeaker) Path() string {
	return speaker.path
}

// Speak starts text and returns without waiting for it to finish.
func (speaker *CommandSpeaker) Speak(text string, rate float64, voiceID string) error {
	speaker.mu.Lock()
	defer speaker.mu.Unlock()

	speaker.stopLocked()

	command := exec.Command(speaker.path, speaker.args(text, rate, voiceID)...)
	if err := command.Start(); err != nil {
		return fmt.Errorf("start %s: %w", filepath.Base(speaker.path), err)
	}
	speaker.current = command

	go speaker.wait(command)
	return nil
}

// Stop interrupts the current utterance, if any.
func (speaker *CommandSpeaker) Stop() {
	speaker.mu.Lock()
	defer speaker.mu.Unlock()
	speaker.stopLocked()
}

func (speaker *CommandSpeaker) stopLocked() {
	if speaker.current == nil || speaker.current.Process == nil {
		return
	}
	if err := speaker.current.Process.Kill(); err != nil {
		speaker.logger.Debug("interrupt speech", slog.Any("error", err))
	}
	speaker.current = nil
}

func (speaker *CommandSpeaker) wait(command *exec.Cmd) {
	err := command.Wait()

	speaker.mu.Lock()
	defer speaker.mu.Unlock()
	if speaker.current == command {
		speaker.current = nil
		if err != nil {
			speaker.logger.Warn("speech command failed", slog.Any("error", err))
		}
	}
}

// argsForCommand picks the argument style for a user supplied command.
func argsForCommand(command string) argsBuilder {
	base := strings.ToLower(filepath.Base(command))
	base = strings.TrimSuffix(base, ".exe")
	switch base {
	case "say":
		return sayArgs
	case "powershell", "pwsh":
		return powershellArgs
	default:
		return espeakArgs
	}
}

func wordsPerMinute(rate float64) int {
	if rate <= 0 {
		rate = 1
	}
	return int(math.Round(baseWordsPerMinute * rate))
}

func espeakArgs(text string, rate float64, voiceID string) []string {
	args := []string{"-s", strconv.Itoa(wordsPerMinute(rate))}
	if voiceID != "" {
		args = append(args, "-v", voiceID)
	}
	return append(args, "--", text)
}

func sayArgs(text string, rate float64, voiceID string) []string {
	args := []string{"-r", strconv.Itoa(wordsPerMinute(rate))}
	if voiceID != "" {
		args = append(args, "-v", voiceID)
	}
	return append(args, "--", text)
}

// powershellArgs drives System.Speech. Its rate runs from -10 to 10 with 0
// as the normal speed.
func powershellArgs(text string, rate float64, voiceID string) []string {
	if rate <= 0 {
		rate = 1
	}
	synthRate := int(math.Round((rate - 1) * 10))
	synthRate = max(-10, min(10, synthRate))

	var script strings.Builder
	script.WriteString("Add-Type -AssemblyName System.Speech; ")
	script.WriteString("$s = New-Object System.Speech.Synthesis.SpeechSynthesizer; ")
	script.WriteString("$s.Rate = " + strconv.Itoa(synthRate) + "; ")
	if voiceID != "" {
		script.WriteString("$s.SelectVoice(" + powershellQuote(voiceID) + "); ")
	}
	script.WriteString("$s.Speak(" + powershellQuote(text) + ")")

	return []string{"-NoProfile", "-NonInteractive", "-Command", script.String()}
}

func powershellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
