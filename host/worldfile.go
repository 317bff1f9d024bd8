package host

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/anchore/spawnguard/spawnguard"
)

// WorldFile describes a world to simulate: entities present before the host is ready and
// entities created afterwards, in order.
type WorldFile struct {
	Existing []spawnguard.Identity `yaml:"existing"`
	Spawns   []spawnguard.Identity `yaml:"spawns"`
}

// ReadWorldFile decodes a YAML (or JSON) world description
func ReadWorldFile(r io.Reader) (*WorldFile, error) {
	var wf WorldFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&wf); err != nil {
		if err == io.EOF {
			return &wf, nil
		}
		return nil, fmt.Errorf("unable to decode world file: %w", err)
	}

	for i, id := range append(append([]spawnguard.Identity(nil), wf.Existing...), wf.Spawns...) {
		if id.TypeName == "" {
			return nil, fmt.Errorf("world entity %d (%q) has no type", i+1, id.ShortName)
		}
	}
	return &wf, nil
}

// Populate adds the pre-existing entities to the world without announcing them
func (wf WorldFile) Populate(w *World) {
	for _, id := range wf.Existing {
		w.Add(id.ShortName, id.TypeName)
	}
}

// SpawnAll creates every spawn entity, announcing each one
func (wf WorldFile) SpawnAll(w *World) {
	for _, id := range wf.Spawns {
		w.Spawn(id.ShortName, id.TypeName)
	}
}
