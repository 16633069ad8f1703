package agent

import (
	"fmt"
	"sort"

	"github.com/sashabaranov/go-openai"
)

// Descriptor describes one remote tool as discovered from the tool server.
type Descriptor struct {
	Name        string
	Description string
	InputSchema any
}

// Registry is the immutable set of tools a run may dispatch to. It is built
// once from discovery and never changes afterwards; a name that is not here
// when the run starts is not callable during the run.
type Registry struct {
	tools map[string]Descriptor
	names []string
}

// NewRegistry builds a registry from discovered descriptors. Duplicate
// names are a discovery bug and rejected outright.
func NewRegistry(descs []Descriptor) (*Registry, error) {
	tools := make(map[string]Descriptor, len(descs))
	for _, d := range descs {
		if d.Name == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if _, exists := tools[d.Name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", d.Name)
		}
		tools[d.Name] = d
	}

	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Registry{tools: tools, names: names}, nil
}

// Lookup returns the descriptor for name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.tools[name]
	return d, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len reports how many tools are registered.
func (r *Registry) Len() int {
	return len(r.names)
}

// OpenAITools translates the registry into the completion API's function
// schema list, in name order so requests are deterministic.
func (r *Registry) OpenAITools() []openai.Tool {
	tools := make([]openai.Tool, 0, len(r.names))
	for _, name := range r.names {
		d := r.tools[name]
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.InputSchema,
			},
		})
	}
	return tools
}
