// Package bundle resolves declared file inputs into literal content.
//
// A FileInput's Content field is ambiguous: it is either the literal
// file body or a filesystem path to read the body from. The
// materializer disambiguates by existence check (a string naming an
// existing filesystem entry is treated as a path), then enforces a
// sandbox before any read: symbolic links are rejected outright, and
// paths resolving outside the configured root are rejected as
// traversal attempts.
//
// The existence sniff is a known sharp edge: literal content that
// happens to name an existing file inside the root will be read from
// disk instead of passed through. Callers who need literal content
// that collides with a real path must rename the path or move the
// root.
package bundle

// FileInput is a declared file whose content is either a literal
// payload or a filesystem path.
type FileInput struct {
	Name    string `json:"name"`    // Name is the file name recorded in the bundle
	Content string `json:"content"` // Content is literal text or a candidate path
}

// ResolvedFile is a file input after materialization; Content is
// guaranteed literal.
type ResolvedFile struct {
	Name    string `json:"name"`    // Name is the file name recorded in the bundle
	Content string `json:"content"` // Content is the literal file body
}
