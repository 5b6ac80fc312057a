// internal/app/system/limits/limits.go
package limits

// Request body size caps. Oversized bodies are rejected before decoding to
// keep one client from exhausting memory.
const (
	// MaxJSONBodySize caps JSON request bodies across the API.
	MaxJSONBodySize = 1 << 20 // 1 MB
)
