package fat12dir

import (
	"strings"

	fat12 "github.com/gofat12/fat12edit"
	"github.com/gofat12/fat12edit/fat12name"
)

const maxPathSegmentLength = 255

// NoPosition marks the synthetic root entry's Position: the root has no
// on-disk directory entry to write back to.
var NoPosition = Position{Dir: 0, Index: ^uint(0)}

// rootEntry is the synthetic entry the path "/" resolves to.
var rootEntry = Entry{Name: "/", Attr: fat12.AttrDirectory, FirstCluster: 0}

// LocateByName scans `parent` for an entry whose canonicalized short name
// matches `userName`, returning both the entry and its write-back Position.
// Volume-label entries are excluded from name lookups even though
// ListEntries includes them in listings.
func (s *Session) LocateByName(parent fat12.ClusterID, userName string) (Entry, Position, error) {
	if parent == 0 && (userName == "." || userName == "..") {
		// Root has no physical "." or ".." entries of its own (they only
		// exist inside non-root directories); both conventionally resolve
		// to root itself.
		return rootEntry, NoPosition, nil
	}

	target := fat12name.ToShort(userName)
	entries, positions, err := s.ListEntries(parent)
	if err != nil {
		return Entry{}, Position{}, err
	}

	for i, e := range entries {
		if e.IsVolumeLabel() {
			continue
		}
		if fat12name.ToShort(e.Name) == target {
			return e, positions[i], nil
		}
	}
	return Entry{}, Position{}, fat12.ErrNotFound.WithMessage(userName)
}

// splitPath tokenizes a path on '/', validating segment length and
// rejecting any empty component (consecutive or leading-after-root
// slashes); a trailing '/' is handled by the caller once the final segment
// is resolved.
func splitPath(path string) (absolute bool, segments []string, trailingSlash bool, err error) {
	if path == "" {
		return false, nil, false, fat12.ErrIllegalPath.WithMessage("empty path")
	}

	absolute = strings.HasPrefix(path, "/")
	trailingSlash = len(path) > 1 && strings.HasSuffix(path, "/")

	trimmed := path
	if absolute {
		trimmed = trimmed[1:]
	}
	if trailingSlash {
		trimmed = trimmed[:len(trimmed)-1]
	}

	if trimmed == "" {
		if trailingSlash {
			// "//": the leading and trailing slashes are adjacent with
			// nothing between them, i.e. an empty path component.
			return false, nil, false, fat12.ErrIllegalPath.WithMessage("empty path component (\"//\")")
		}
		// Path was "/" after stripping its leading slash.
		return absolute, nil, trailingSlash, nil
	}

	for _, seg := range strings.Split(trimmed, "/") {
		if seg == "" {
			return false, nil, false, fat12.ErrIllegalPath.WithMessage("empty path component (\"//\")")
		}
		if len(seg) > maxPathSegmentLength {
			return false, nil, false, fat12.ErrIllegalPath.WithMessage("path component too long")
		}
		segments = append(segments, seg)
	}
	return absolute, segments, trailingSlash, nil
}

// LocateByPath resolves a '/'-separated path relative to `start`. A
// leading '/' rebases resolution to root. The path "/" itself resolves to
// a synthetic root entry with NoPosition. Every intermediate segment must
// resolve to a directory; a trailing '/' requires the final segment to
// resolve to a directory too.
func (s *Session) LocateByPath(start fat12.ClusterID, path string) (Entry, Position, error) {
	absolute, segments, trailingSlash, err := splitPath(path)
	if err != nil {
		return Entry{}, Position{}, err
	}

	current := start
	if absolute {
		current = 0
	}

	if len(segments) == 0 {
		if current == 0 {
			return rootEntry, NoPosition, nil
		}
		// An absolute/relative path that reduced to nothing but isn't
		// actually root (shouldn't normally happen since callers pass
		// already-simplified paths, but stay defensive).
		return rootEntry, NoPosition, nil
	}

	var entry Entry
	var pos Position
	for i, seg := range segments {
		entry, pos, err = s.LocateByName(current, seg)
		if err != nil {
			return Entry{}, Position{}, err
		}

		isLast := i == len(segments)-1
		if !isLast && !entry.IsDir() {
			return Entry{}, Position{}, fat12.ErrWrongKind.WithMessage(
				seg + " is not a directory")
		}
		if isLast && trailingSlash && !entry.IsDir() {
			return Entry{}, Position{}, fat12.ErrIllegalPath.WithMessage(
				"trailing '/' on a non-directory")
		}
		current = entry.FirstCluster
	}
	return entry, pos, nil
}
