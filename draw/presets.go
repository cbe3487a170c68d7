package draw

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

var ErrPresetNotFound = errors.New("preset not found")

// Preset is a named pair of lists, also used for the lists carried by a
// share link.
type Preset struct {
	Participants []string `yaml:"participants" json:"participants"`
	Outcomes     []string `yaml:"outcomes" json:"outcomes"`
}

type presetFile struct {
	Presets map[string]Preset `yaml:"presets"`
}

// Presets maps preset names to their lists.
type Presets map[string]Preset

// LoadPresets reads a YAML preset file from path and validates every preset.
func LoadPresets(path string, limits Limits, mode Mode) (Presets, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open presets: %w", err)
	}
	defer f.Close()

	return DecodePresets(f, limits, mode)
}

// DecodePresets parses presets from r. An empty document yields no presets.
func DecodePresets(r io.Reader, limits Limits, mode Mode) (Presets, error) {
	var pf presetFile

	if err := yaml.NewDecoder(r).Decode(&pf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse presets: %w", err)
	}

	presets := make(Presets, len(pf.Presets))

	for name, p := range pf.Presets {
		if err := Validate(p.Participants, p.Outcomes, limits, mode); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}

		presets[name] = p
	}

	return presets, nil
}

func (p Presets) Get(name string) (Preset, error) {
	preset, ok := p[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return preset, nil
}

// Names returns the preset names in sorted order.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}
