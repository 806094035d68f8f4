package augment

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Plan is an augmentation recipe stored as YAML:
//
//	size: 250
//	filters:
//	  - rotate: 15
//	  - move: {x: 10, y: -5}
//	  - zoom: 120
//	  - blur
//
// "move" and "translate", "zoom" and "scale" are synonyms. A translation
// may also be written as a two-element list.
type Plan struct {
	Size    int        `yaml:"size,omitempty"`
	Filters FilterList `yaml:"filters"`
}

// Options converts the plan's settings into session options
func (p Plan) Options() []Option {
	if p.Size > 0 {
		return []Option{WithImageSize(p.Size, p.Size)}
	}
	return nil
}

// ParsePlan decodes a YAML plan
func ParsePlan(data []byte) (Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Plan{}, fmt.Errorf("failed to parse plan: %w", err)
	}
	if p.Size < 0 {
		return Plan{}, fmt.Errorf("plan size must be positive, got %d", p.Size)
	}
	return p, nil
}

// LoadPlan reads a YAML plan from disk
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to read plan file: %w", err)
	}
	return ParsePlan(data)
}

// FilterList is an ordered filter list with a compact YAML form
type FilterList []Filter

// UnmarshalYAML decodes filters written as "blur" or single-key mappings
func (l *FilterList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: filters must be a list", value.Line)
	}

	out := make(FilterList, 0, len(value.Content))
	for _, item := range value.Content {
		f, err := decodeFilter(item)
		if err != nil {
			return err
		}
		out = append(out, f)
	}
	*l = out
	return nil
}

// MarshalYAML writes the compact form
func (l FilterList) MarshalYAML() (any, error) {
	out := make([]any, 0, len(l))
	for _, f := range l {
		switch f := f.(type) {
		case Rotate:
			out = append(out, map[string]float64{"rotate": f.Degrees})
		case Translate:
			out = append(out, map[string]any{"translate": map[string]float64{"x": f.DX, "y": f.DY}})
		case Scale:
			out = append(out, map[string]float64{"scale": f.Percent})
		case Blur:
			out = append(out, "blur")
		default:
			return nil, fmt.Errorf("cannot encode filter %T", f)
		}
	}
	return out, nil
}

func decodeFilter(node *yaml.Node) (Filter, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if strings.EqualFold(node.Value, "blur") {
			return Blur{}, nil
		}
		return nil, fmt.Errorf("line %d: filter %q needs a value", node.Line, node.Value)
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return nil, fmt.Errorf("line %d: a filter has exactly one name", node.Line)
		}
	default:
		return nil, fmt.Errorf("line %d: invalid filter", node.Line)
	}

	name, arg := strings.ToLower(node.Content[0].Value), node.Content[1]
	switch name {
	case "rotate":
		var deg float64
		if err := arg.Decode(&deg); err != nil {
			return nil, fmt.Errorf("line %d: rotate: %w", arg.Line, err)
		}
		return Rotate{Degrees: deg}, nil
	case "scale", "zoom":
		var pct float64
		if err := arg.Decode(&pct); err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", arg.Line, name, err)
		}
		return Scale{Percent: pct}, nil
	case "translate", "move":
		return decodeTranslate(name, arg)
	case "blur":
		return Blur{}, nil
	}
	return nil, fmt.Errorf("line %d: unknown filter %q", node.Line, name)
}

func decodeTranslate(name string, arg *yaml.Node) (Filter, error) {
	if arg.Kind == yaml.SequenceNode {
		var xy []float64
		if err := arg.Decode(&xy); err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", arg.Line, name, err)
		}
		if len(xy) != 2 {
			return nil, fmt.Errorf("line %d: %s takes [x, y]", arg.Line, name)
		}
		return Translate{DX: xy[0], DY: xy[1]}, nil
	}

	var xy struct {
		X  *float64 `yaml:"x"`
		Y  *float64 `yaml:"y"`
		DX *float64 `yaml:"dx"`
		DY *float64 `yaml:"dy"`
	}
	if err := arg.Decode(&xy); err != nil {
		return nil, fmt.Errorf("line %d: %s: %w", arg.Line, name, err)
	}
	return Translate{DX: first(xy.X, xy.DX), DY: first(xy.Y, xy.DY)}, nil
}

func first(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}
