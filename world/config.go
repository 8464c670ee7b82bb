package world

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/akmonengine/raycast"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig = errors.New("invalid world config")
	ErrUnknownLayer  = errors.New("unknown collision layer")
)

// Config describes the spatial index and the named collision layers of a World.
type Config struct {
	// CellSize is the edge length of a spatial grid cell
	CellSize float64 `json:"cell_size" yaml:"cell_size"`
	// Cells is the number of hashed cells, rounded up to a power of two
	Cells int `json:"cells" yaml:"cells"`
	// Workers bounds the goroutines used by Sync and RaycastBatch
	Workers int `json:"workers" yaml:"workers"`
	// Layers maps a layer name to its bit index (0-31)
	Layers map[string]uint `json:"layers" yaml:"layers"`
}

func DefaultConfig() Config {
	return Config{
		CellSize: 4.0,
		Cells:    1024,
		Workers:  DEFAULT_WORKERS,
		Layers:   map[string]uint{"default": 0},
	}
}

// LoadConfig reads a YAML config. Fields missing from the document keep
// their DefaultConfig value.
func LoadConfig(r io.Reader) (Config, error) {
	c := DefaultConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode world config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open world config: %w", err)
	}
	defer f.Close()

	return LoadConfig(f)
}

func (c Config) Validate() error {
	if !(c.CellSize > 0) || math.IsInf(c.CellSize, 1) {
		return fmt.Errorf("%w: cell_size must be positive and finite, got %v", ErrInvalidConfig, c.CellSize)
	}
	if c.Cells <= 0 {
		return fmt.Errorf("%w: cells must be positive, got %d", ErrInvalidConfig, c.Cells)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	for _, name := range c.layerNames() {
		if bit := c.Layers[name]; bit >= 32 {
			return fmt.Errorf("%w: layer %q uses bit %d, must be below 32", ErrInvalidConfig, name, bit)
		}
	}
	return nil
}

// layerNames returns the layer names sorted, so errors are deterministic
func (c Config) layerNames() []string {
	names := make([]string, 0, len(c.Layers))
	for name := range c.Layers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Layer returns the bit of a named layer
func (c Config) Layer(name string) (uint32, error) {
	bit, ok := c.Layers[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownLayer, name)
	}
	return 1 << bit, nil
}

// Groups ORs the bits of the named layers, for RigidBody.Membership and CollideWith
func (c Config) Groups(names ...string) (uint32, error) {
	var bits uint32
	for _, name := range names {
		bit, err := c.Layer(name)
		if err != nil {
			return 0, err
		}
		bits |= bit
	}
	return bits, nil
}

// Mask returns a present mask of the named layers. With no names, the mask
// is present and empty.
func (c Config) Mask(names ...string) (raycast.Mask, error) {
	bits, err := c.Groups(names...)
	if err != nil {
		return raycast.Mask{}, err
	}
	return raycast.MaskOf(bits), nil
}

// Query builds a ray filter from layer names. A nil list leaves its mask
// absent; an empty non-nil list yields a present, empty mask.
func (c Config) Query(membership, collideWith []string) (raycast.Query, error) {
	var q raycast.Query
	var err error

	if membership != nil {
		if q.Membership, err = c.Mask(membership...); err != nil {
			return raycast.Query{}, err
		}
	}
	if collideWith != nil {
		if q.CollideWith, err = c.Mask(collideWith...); err != nil {
			return raycast.Query{}, err
		}
	}
	return q, nil
}
