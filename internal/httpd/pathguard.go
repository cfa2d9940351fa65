package httpd

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var errUnsafePath = errors.New("path escapes sandbox root")

// resolvePath maps a decoded request path onto the sandbox root.
// Lexical rejects (parent-directory segments, absolute remainders) come
// first so no filesystem metadata is touched for obviously hostile
// paths; the surviving path is canonicalized so symlink escapes are
// caught too. A path whose target does not exist yet is returned in
// joined form, the caller turns that into a 404.
func resolvePath(requestPath, root string) (string, error) {
	trimmed := strings.TrimPrefix(requestPath, "/")
	if strings.HasPrefix(trimmed, "/") || filepath.IsAbs(trimmed) {
		return "", errUnsafePath
	}
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == ".." {
			return "", errUnsafePath
		}
	}

	full := filepath.Join(root, filepath.FromSlash(trimmed))

	resolved, err := filepath.EvalSymlinks(full)
	if errors.Is(err, fs.ErrNotExist) {
		// Lexically inside the root, just absent.
		return full, nil
	}
	if err != nil {
		return "", errUnsafePath
	}

	if resolved != root && !strings.HasPrefix(resolved, root+string(os.PathSeparator)) {
		return "", errUnsafePath
	}
	return resolved, nil
}
