package catalog

import "fmt"

// Backend names where catalog content comes from.
type Backend string

const (
	// BackendFile reads a YAML content file, or the embedded default.
	BackendFile Backend = "file"
	// BackendPostgres reads the catalog tables.
	BackendPostgres Backend = "postgres"
	// BackendHTTP reads a JSON content service.
	BackendHTTP Backend = "http"
)

// ParseBackend validates a configured backend name.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case BackendFile, BackendPostgres, BackendHTTP:
		return b, nil
	case "":
		return BackendFile, nil
	default:
		return "", fmt.Errorf("unknown catalog backend %q", s)
	}
}
