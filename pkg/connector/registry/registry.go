// Package registry maps connector names to factories and keeps the catalog
// shown by "colconv list".
package registry

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/colconv/pkg/connector/core"
	"github.com/ajitpratap0/colconv/pkg/errors"
	"github.com/ajitpratap0/colconv/pkg/logger"
)

// SourceFactory creates a source connector from its settings.
type SourceFactory func(settings core.Settings) (core.Source, error)

// DestinationFactory creates a destination connector from its settings.
type DestinationFactory func(settings core.Settings) (core.Destination, error)

// factories is a named set of constructors for one connector kind.
type factories[F any] struct {
	kind   core.ConnectorType
	mu     sync.RWMutex
	byName map[string]F
}

func newFactories[F any](kind core.ConnectorType) *factories[F] {
	return &factories[F]{kind: kind, byName: make(map[string]F)}
}

func (f *factories[F]) add(name string, factory F) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byName[name]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "%s connector %s already registered", f.kind, name)
	}
	f.byName[name] = factory
	return nil
}

func (f *factories[F]) get(name string) (F, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	factory, ok := f.byName[name]
	if !ok {
		return factory, errors.Newf(errors.ErrorTypeConfig, "%s connector %q not found", f.kind, name).
			WithDetail("available", f.namesLocked())
	}
	return factory, nil
}

func (f *factories[F]) names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.namesLocked()
}

func (f *factories[F]) namesLocked() []string {
	names := make([]string, 0, len(f.byName))
	for name := range f.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry maps connector names to their factories.
type Registry struct {
	sources      *factories[SourceFactory]
	destinations *factories[DestinationFactory]
	logger       *zap.Logger
}

var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sources:      newFactories[SourceFactory](core.ConnectorTypeSource),
		destinations: newFactories[DestinationFactory](core.ConnectorTypeDestination),
		logger:       logger.Get().With(zap.String("component", "connector_registry")),
	}
}

// RegisterSource registers a source connector factory
func (r *Registry) RegisterSource(name string, factory SourceFactory) error {
	if err := r.sources.add(name, factory); err != nil {
		return err
	}
	r.logger.Debug("source connector registered", zap.String("name", name))
	return nil
}

// RegisterDestination registers a destination connector factory
func (r *Registry) RegisterDestination(name string, factory DestinationFactory) error {
	if err := r.destinations.add(name, factory); err != nil {
		return err
	}
	r.logger.Debug("destination connector registered", zap.String("name", name))
	return nil
}

// CreateSource builds the source named by settings.Config.Type.
func (r *Registry) CreateSource(settings core.Settings) (core.Source, error) {
	name := settings.Config.Type
	factory, err := r.sources.get(name)
	if err != nil {
		return nil, err
	}
	source, err := factory(settings)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create source connector "+name)
	}
	return source, nil
}

// CreateDestination builds the destination named by settings.Config.Type.
func (r *Registry) CreateDestination(settings core.Settings) (core.Destination, error) {
	name := settings.Config.Type
	factory, err := r.destinations.get(name)
	if err != nil {
		return nil, err
	}
	destination, err := factory(settings)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create destination connector "+name)
	}
	return destination, nil
}

// ListSources returns the sorted names of registered source connectors
func (r *Registry) ListSources() []string { return r.sources.names() }

// ListDestinations returns the sorted names of registered destination connectors
func (r *Registry) ListDestinations() []string { return r.destinations.names() }

// Global registry functions

// RegisterSource registers a source connector in the global registry
func RegisterSource(name string, factory SourceFactory) error {
	return globalRegistry.RegisterSource(name, factory)
}

// RegisterDestination registers a destination connector in the global registry
func RegisterDestination(name string, factory DestinationFactory) error {
	return globalRegistry.RegisterDestination(name, factory)
}

// CreateSource creates a source connector from the global registry
func CreateSource(settings core.Settings) (core.Source, error) {
	return globalRegistry.CreateSource(settings)
}

// CreateDestination creates a destination connector from the global registry
func CreateDestination(settings core.Settings) (core.Destination, error) {
	return globalRegistry.CreateDestination(settings)
}

// ListSources returns registered sources from the global registry
func ListSources() []string {
	return globalRegistry.ListSources()
}

// ListDestinations returns registered destinations from the global registry
func ListDestinations() []string {
	return globalRegistry.ListDestinations()
}

// ConnectorInfo provides information about a connector
type ConnectorInfo struct {
	Name         string             `json:"name"`
	Type         core.ConnectorType `json:"type"`
	Description  string             `json:"description"`
	Capabilities []string           `json:"capabilities"`
	// Options lists the configuration keys the connector reads.
	Options map[string]string `json:"options"`
}

// ConnectorCatalog manages connector metadata
type ConnectorCatalog struct {
	connectors map[string]*ConnectorInfo
	mu         sync.RWMutex
}

// NewConnectorCatalog creates a new connector catalog
func NewConnectorCatalog() *ConnectorCatalog {
	return &ConnectorCatalog{
		connectors: make(map[string]*ConnectorInfo),
	}
}

func catalogKey(info *ConnectorInfo) string {
	return string(info.Type) + "/" + info.Name
}

// Register adds a connector to the catalog
func (c *ConnectorCatalog) Register(info *ConnectorInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := catalogKey(info)
	if _, exists := c.connectors[key]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "connector %s already in catalog", key)
	}

	c.connectors[key] = info
	return nil
}

// Get retrieves connector information
func (c *ConnectorCatalog) Get(t core.ConnectorType, name string) (*ConnectorInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, exists := c.connectors[string(t)+"/"+name]
	if !exists {
		return nil, errors.Newf(errors.ErrorTypeNotFound, "connector %s/%s not found in catalog", t, name)
	}

	return info, nil
}

// List returns all connectors in the catalog ordered by type and name
func (c *ConnectorCatalog) List() []*ConnectorInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	infos := make([]*ConnectorInfo, 0, len(c.connectors))
	for _, info := range c.connectors {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return catalogKey(infos[i]) < catalogKey(infos[j])
	})
	return infos
}

// Global catalog instance
var globalCatalog = NewConnectorCatalog()

// RegisterConnectorInfo registers connector information in the global catalog
func RegisterConnectorInfo(info *ConnectorInfo) error {
	return globalCatalog.Register(info)
}

// GetConnectorInfo retrieves connector information from the global catalog
func GetConnectorInfo(t core.ConnectorType, name string) (*ConnectorInfo, error) {
	return globalCatalog.Get(t, name)
}

// ListConnectorInfo lists all connectors in the global catalog
func ListConnectorInfo() []*ConnectorInfo {
	return globalCatalog.List()
}
