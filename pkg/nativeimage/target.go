package nativeimage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/platinummonkey/graalkit/pkg/platform"
)

// BuildTarget describes what the compiler should produce
type BuildTarget struct {
	// MainClass is the entry point passed as the final argument
	MainClass string
	// OutputName is the executable file name; defaults to DefaultOutputName(ProjectDir)
	OutputName string
	// OutputDir receives the executable; relative paths are taken from ProjectDir
	OutputDir string
	// Classpath holds the assembled jars and directories; relative entries are taken from ProjectDir
	Classpath []string
	// ProjectDir is the compiler's working directory; defaults to the current directory
	ProjectDir string
}

// WithDefaults returns a copy of t with OutputName and ProjectDir filled in
// and every path made absolute, so the compiler and the caller agree on them.
func (t BuildTarget) WithDefaults() (BuildTarget, error) {
	projectDir, err := filepath.Abs(t.ProjectDir)
	if err != nil {
		return t, fmt.Errorf("resolve project directory: %w", err)
	}
	t.ProjectDir = projectDir
	if t.OutputName == "" {
		t.OutputName = DefaultOutputName(t.ProjectDir)
	}
	if t.OutputDir != "" {
		t.OutputDir = t.resolve(t.OutputDir)
	}
	if len(t.Classpath) > 0 {
		classpath := make([]string, len(t.Classpath))
		for i, entry := range t.Classpath {
			classpath[i] = t.resolve(entry)
		}
		t.Classpath = classpath
	}
	return t, nil
}

func (t BuildTarget) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(t.ProjectDir, path)
}

// Validate checks the target can be compiled
func (t BuildTarget) Validate() error {
	if t.MainClass == "" {
		return fmt.Errorf("%w: main class is required", ErrInvalidTarget)
	}
	if t.OutputName == "" {
		return fmt.Errorf("%w: output name is required", ErrInvalidTarget)
	}
	if strings.ContainsRune(t.OutputName, filepath.Separator) {
		return fmt.Errorf("%w: output name %q must not contain a path separator", ErrInvalidTarget, t.OutputName)
	}
	if t.OutputDir == "" {
		return fmt.Errorf("%w: output directory is required", ErrInvalidTarget)
	}
	if len(t.Classpath) == 0 {
		return fmt.Errorf("%w: classpath is empty", ErrInvalidTarget)
	}
	return nil
}

// Output returns the path of the executable the target produces
func (t BuildTarget) Output() string {
	return filepath.Join(t.OutputDir, t.OutputName)
}

// DefaultOutputName derives an executable name from the project directory
func DefaultOutputName(projectDir string) string {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		abs = projectDir
	}
	name := filepath.Base(abs)
	if name == "." || name == string(filepath.Separator) {
		return "app"
	}
	return name
}

// Arguments renders the compiler argument vector for t
func Arguments(t BuildTarget) []string {
	return []string{
		"-cp", strings.Join(t.Classpath, string(os.PathListSeparator)),
		"-H:Path=" + t.OutputDir,
		"-H:Name=" + t.OutputName,
		t.MainClass,
	}
}

// ExecutablePath returns where the compiler lives inside an extracted toolkit
func ExecutablePath(toolkitDir string, p platform.Key) string {
	if p.IsMacOS() {
		return filepath.Join(toolkitDir, "Contents", "Home", "bin", "native-image")
	}
	return filepath.Join(toolkitDir, "bin", "native-image")
}
