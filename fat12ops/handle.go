// Package fat12ops implements the directory- and file-level commands the
// shell front-end dispatches to -- list, tree, cd, type, cp, mv, rm,
// mkdir, rmdir, concat, cpdir -- each resolving paths through fat12dir,
// moving bytes through fat12file, and mutating entries through the
// directory mutator, with manual rollback on failure.
package fat12ops

import (
	"strings"

	fat12 "github.com/gofat12/fat12edit"
	"github.com/gofat12/fat12edit/fat12dir"
)

// Handle is the working-directory handle passed to and from the shell: a
// cluster number plus its canonical absolute path string. Root is
// Handle{0, "/"}.
type Handle struct {
	ClusterNumber fat12.ClusterID
	AbsPath       string
}

// RootHandle is the handle a fresh session starts at.
var RootHandle = Handle{ClusterNumber: 0, AbsPath: "/"}

// SimplifyPath tokenizes an absolute path on '/', drops "." components,
// pops the previous component on "..", and collapses empty components.
// The result always begins with '/' and has no trailing '/' unless it is
// exactly "/".
func SimplifyPath(path string) string {
	var stack []string
	for _, tok := range strings.Split(path, "/") {
		switch tok {
		case "", ".":
			continue
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, tok)
		}
	}
	if len(stack) == 0 {
		return "/"
	}
	return "/" + strings.Join(stack, "/")
}

// composePath concatenates a path onto the current absolute path unless it
// is itself absolute, then simplifies the result.
func composePath(current, path string) string {
	if strings.HasPrefix(path, "/") {
		return SimplifyPath(path)
	}
	if current == "/" {
		return SimplifyPath("/" + path)
	}
	return SimplifyPath(current + "/" + path)
}

// splitLastSlash splits a destination path at its last '/': the prefix
// names a directory, the suffix names the entry within it. A path with no
// '/' has an empty prefix, meaning "the resolution base directory itself";
// a path whose only '/' is the leading one has the prefix "/" (root).
func splitLastSlash(path string) (dirPart, namePart string) {
	if i := strings.LastIndexByte(path, '/'); i == 0 {
		return "/", path[1:]
	} else if i > 0 {
		return path[:i], path[i+1:]
	}
	return "", path
}

// resolveDir resolves `path` (which may be empty, meaning `base` itself) to
// a directory cluster number, requiring it to actually be a directory.
func (o *Ops) resolveDir(base fat12.ClusterID, path string) (fat12.ClusterID, error) {
	if path == "" {
		return base, nil
	}
	entry, _, err := o.Session.LocateByPath(base, path)
	if err != nil {
		return 0, err
	}
	if !entry.IsDir() {
		return 0, fat12.ErrWrongKind.WithMessage(path + " is not a directory")
	}
	return entry.FirstCluster, nil
}

// resolveDestination implements the cp/mv/concat destination-splitting
// rule: split at the last '/', resolve the prefix as an existing directory
// (or `base` if empty), and use `srcName` as the target name if the suffix
// is empty. If the computed name already names an existing directory,
// retarget into it using srcName; if it names an existing file, fail with
// ALREADY_EXISTS.
func (o *Ops) resolveDestination(base fat12.ClusterID, des, srcName string) (destDir fat12.ClusterID, name string, err error) {
	dirPart, namePart := splitLastSlash(des)

	destDir, err = o.resolveDir(base, dirPart)
	if err != nil {
		return 0, "", err
	}

	name = namePart
	if name == "" {
		name = srcName
	}
	if name == "." || name == ".." {
		return 0, "", fat12.ErrReservedName.WithMessage(name)
	}

	existing, _, err := o.Session.LocateByName(destDir, name)
	if err == nil {
		if existing.IsDir() {
			return existing.FirstCluster, srcName, nil
		}
		return 0, "", fat12.ErrAlreadyExists.WithMessage(name)
	}

	return destDir, name, nil
}

// Ops bundles a directory/file session with the path-level commands built
// on top of it.
type Ops struct {
	Session *fat12dir.Session
}

// New builds Ops over an already-open directory session.
func New(session *fat12dir.Session) *Ops {
	return &Ops{Session: session}
}

// Cd resolves `path` relative to `cwd` and returns the updated handle. The
// target must be a directory.
func (o *Ops) Cd(cwd Handle, path string) (Handle, error) {
	entry, _, err := o.Session.LocateByPath(cwd.ClusterNumber, path)
	if err != nil {
		return Handle{}, err
	}
	if !entry.IsDir() {
		return Handle{}, fat12.ErrWrongKind.WithMessage(path + " is not a directory")
	}
	return Handle{
		ClusterNumber: entry.FirstCluster,
		AbsPath:       composePath(cwd.AbsPath, path),
	}, nil
}
