package provider

import "fmt"

// Target is the kind of artifact a descriptor is built for. Shader templates
// can branch on it.
type Target string

const (
	TargetExecutable Target = "executable"
	TargetLibrary    Target = "library"
)

// Targets returns every build target.
func Targets() []Target {
	return []Target{TargetExecutable, TargetLibrary}
}

// ParseTarget returns the target spelled name.
func ParseTarget(name string) (Target, error) {
	for _, t := range Targets() {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown target %q (expected executable or library)", name)
}

func (t Target) String() string {
	return string(t)
}

// Set and Type let a Target be used as a command-line flag value.
func (t *Target) Set(name string) error {
	target, err := ParseTarget(name)
	if err != nil {
		return err
	}
	*t = target
	return nil
}

func (t *Target) Type() string {
	return "target"
}
