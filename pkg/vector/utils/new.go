// Package vectorutils constructs vector drivers from configuration.
package vectorutils

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/clipperhq/clipper/pkg/vector"
	"github.com/clipperhq/clipper/pkg/vector/chroma"
	"github.com/clipperhq/clipper/pkg/vector/inmemory"
	"github.com/clipperhq/clipper/pkg/vector/sqlitevec"
)

// NewDriverOpts configures NewDriver.
type NewDriverOpts struct {
	// ProviderType selects the driver: "memory", "sqlite", or "chroma".
	ProviderType string

	// TargetURL is the server URL for remote providers (chroma) or the
	// database path for sqlite.
	TargetURL string

	// Dimensions is the embedding dimensionality (required for sqlite).
	Dimensions uint

	// Logger is the configured logger.
	Logger *slog.Logger
}

// Factory builds a fresh, empty vector driver. Each ingestion run calls the
// factory once so the session's index can be replaced atomically.
type Factory func() (vector.Driver, error)

// NewFactory returns a Factory for the configured provider.
func NewFactory(o *NewDriverOpts) Factory {
	return func() (vector.Driver, error) {
		switch o.ProviderType {
		case "memory", "":
			return inmemory.NewDriver(), nil
		case "sqlite":
			return sqlitevec.NewDriver(sqlitevec.Config{
				DBPath:     o.TargetURL,
				Dimensions: o.Dimensions,
			}, o.Logger)
		case "chroma":
			// A unique collection per build keeps the factory contract:
			// every call yields an empty index.
			return chroma.NewDriver(chroma.Config{
				URL:            o.TargetURL,
				CollectionName: fmt.Sprintf("%s-%s", chroma.DefaultCollectionName, uuid.NewString()[:8]),
			}, o.Logger)
		default:
			return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
		}
	}
}
