package formatters

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wayneeseguin/logspool/pkg/types"
)

// Factory creates formatter instances keyed by output mode
type Factory struct {
	mu         sync.RWMutex
	formatters map[types.OutputMode]FormatterConstructor
}

// FormatterConstructor creates a formatter. separator is only meaningful to
// line-oriented formats.
type FormatterConstructor func(separator string) (types.Formatter, error)

// NewFactory creates a new formatter factory with the xml and text formats
// registered.
func NewFactory() *Factory {
	f := &Factory{
		formatters: make(map[types.OutputMode]FormatterConstructor),
	}

	f.Register(types.OutputXML, func(string) (types.Formatter, error) {
		return NewXMLFormatter(), nil
	})

	f.Register(types.OutputText, func(sep string) (types.Formatter, error) {
		return NewTextFormatter(sep), nil
	})

	return f
}

// Register registers a formatter constructor, replacing any previous one for
// the same mode.
func (f *Factory) Register(mode types.OutputMode, constructor FormatterConstructor) error {
	if mode == "" {
		return fmt.Errorf("output mode cannot be empty")
	}
	if constructor == nil {
		return fmt.Errorf("formatter constructor cannot be nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.formatters[mode] = constructor
	return nil
}

// CreateFormatter creates the formatter for mode.
func (f *Factory) CreateFormatter(mode types.OutputMode, separator string) (types.Formatter, error) {
	f.mu.RLock()
	constructor, exists := f.formatters[mode]
	f.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("output mode %q not registered", mode)
	}

	return constructor(separator)
}

// Modes returns the registered output modes in sorted order.
func (f *Factory) Modes() []types.OutputMode {
	f.mu.RLock()
	defer f.mu.RUnlock()

	modes := make([]types.OutputMode, 0, len(f.formatters))
	for mode := range f.formatters {
		modes = append(modes, mode)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

// DefaultFactory is the global formatter factory
var DefaultFactory = NewFactory()

// Register registers a formatter with the default factory
func Register(mode types.OutputMode, constructor FormatterConstructor) error {
	return DefaultFactory.Register(mode, constructor)
}

// New creates a formatter using the default factory
func New(mode types.OutputMode, separator string) (types.Formatter, error) {
	return DefaultFactory.CreateFormatter(mode, separator)
}
