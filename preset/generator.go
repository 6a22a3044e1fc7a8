package preset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds one analyzer run.
const DefaultTimeout = 5 * time.Minute

// AnalyzerName returns the file name of the analyzer executable on this
// platform.
func AnalyzerName() string {
	if runtime.GOOS == "windows" {
		return "PresetAnalyzer.exe"
	}

	return "PresetAnalyzer"
}

// LocateAnalyzer looks for the analyzer executable in dirs, in order. With
// no dirs it searches next to the running executable, in
// <UserConfigDir>/EQPlugin and on PATH.
func LocateAnalyzer(dirs ...string) (string, error) {
	name := AnalyzerName()

	if len(dirs) == 0 {
		if exe, err := os.Executable(); err == nil {
			dirs = append(dirs, filepath.Dir(exe))
		}
		if cfg, err := os.UserConfigDir(); err == nil {
			dirs = append(dirs, filepath.Join(cfg, CreatedBy))
		}
		if path, err := exec.LookPath(name); err == nil {
			dirs = append(dirs, filepath.Dir(path))
		}
	}

	for _, dir := range dirs {
		candidate := filepath.Join(dir, name)
		if isRegular(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrAnalyzerNotFound, name)
}

// Generator runs the external analyzer that derives a preset from an audio
// file. The zero value searches for the analyzer, writes into
// DefaultDirectory and logs to the standard logger.
type Generator struct {
	Executable string
	OutputDir  string
	Timeout    time.Duration
	Logger     logrus.FieldLogger
}

func (g *Generator) logger() logrus.FieldLogger {
	if g.Logger != nil {
		return g.Logger
	}

	return logrus.StandardLogger()
}

// OutputPath returns where a run for audioFile and name writes its preset.
func (g *Generator) OutputPath(audioFile, name string) string {
	dir := g.OutputDir
	if dir == "" {
		dir = DefaultDirectory()
	}

	return filepath.Join(dir, outputName(audioFile, name))
}

func outputName(audioFile, name string) string {
	if name == "" {
		name = baseName(audioFile)
	}

	return name + "_preset" + Extension
}

// Generate runs the analyzer as "<exe> <audio> [name] <output>" and returns
// the path of the created preset. When the expected output is missing the
// analyzer's directory and the working directory are searched as well.
func (g *Generator) Generate(ctx context.Context, audioFile, name string) (string, error) {
	log := g.logger().WithFields(logrus.Fields{
		"audio": audioFile,
		"name":  name,
	})

	exe := g.Executable
	if exe == "" {
		found, err := LocateAnalyzer()
		if err != nil {
			return "", err
		}
		exe = found
	}
	if !isRegular(exe) {
		return "", fmt.Errorf("%w: %s", ErrAnalyzerNotFound, exe)
	}
	if !isRegular(audioFile) {
		return "", fmt.Errorf("preset: audio file %s: %w", audioFile, os.ErrNotExist)
	}

	out := g.OutputPath(audioFile, name)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("preset: create output directory: %w", err)
	}
	if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("preset: remove previous output: %w", err)
	}

	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{audioFile}
	if name != "" {
		args = append(args, name)
	}
	args = append(args, out)

	log.WithField("analyzer", exe).Info("running preset analyzer")
	start := time.Now()

	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.WaitDelay = time.Second
	output, err := cmd.CombinedOutput()
	if len(output) > 0 {
		log.WithField("output", strings.TrimSpace(string(output))).Debug("analyzer output")
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}

		return "", fmt.Errorf("%w: %w", ErrGeneratorFailed, err)
	}

	// Files older than this run are leftovers from an earlier one. Coarse
	// filesystem timestamps round down to the second.
	since := start.Truncate(time.Second)
	for _, candidate := range []string{
		out,
		filepath.Join(filepath.Dir(exe), filepath.Base(out)),
		filepath.Base(out),
	} {
		if isWrittenSince(candidate, since) {
			log.WithFields(logrus.Fields{
				"preset":   candidate,
				"duration": time.Since(start),
			}).Info("preset generated")

			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrPresetNotCreated, out)
}

func isRegular(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func isWrittenSince(path string, since time.Time) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular() && !info.ModTime().Before(since)
}

// IsGeneratorError reports whether err came from a failed analyzer run, as
// opposed to a problem with the inputs.
func IsGeneratorError(err error) bool {
	return errors.Is(err, ErrGeneratorFailed) || errors.Is(err, ErrPresetNotCreated)
}
