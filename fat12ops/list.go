package fat12ops

import (
	"sort"
	"strings"

	fat12 "github.com/gofat12/fat12edit"
	"github.com/gofat12/fat12edit/fat12dir"
	"github.com/gofat12/fat12edit/fat12file"
	"github.com/gofat12/fat12edit/fat12name"
)

// List enumerates a directory's entries in display order: volume-label
// entries first, then directories before files; "." before ".." before the
// rest by short-name byte order within directories, and by short-name byte
// order within files. An empty `path` lists `cwd` itself.
func (o *Ops) List(cwd fat12.ClusterID, path string) ([]fat12dir.Entry, error) {
	dir, err := o.resolveDir(cwd, path)
	if err != nil {
		return nil, err
	}
	entries, _, err := o.Session.ListEntries(dir)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return listLess(entries[i], entries[j])
	})
	return entries, nil
}

func listLess(a, b fat12dir.Entry) bool {
	aClass, bClass := listClass(a), listClass(b)
	if aClass != bClass {
		return aClass < bClass
	}
	aShort, bShort := fat12name.ToShort(a.Name), fat12name.ToShort(b.Name)
	return string(aShort[:]) < string(bShort[:])
}

// listClass ranks an entry for sort ordering: volume labels first, then
// "." and "..", then other directories, then files.
func listClass(e fat12dir.Entry) int {
	switch {
	case e.IsVolumeLabel():
		return 0
	case e.Name == ".":
		return 1
	case e.Name == "..":
		return 2
	case e.IsDir():
		return 3
	default:
		return 4
	}
}

// Type reads a file's full content; `path` must resolve to a file.
func (o *Ops) Type(cwd fat12.ClusterID, path string) ([]byte, error) {
	entry, _, err := o.Session.LocateByPath(cwd, path)
	if err != nil {
		return nil, err
	}
	if entry.IsDir() {
		return nil, fat12.ErrWrongKind.WithMessage(path + " is a directory")
	}
	return fat12file.ReadAll(o.Session.Image, o.Session.Boot, o.Session.FAT, entry)
}

// Tree renders a directory's subtree using box-drawing connectors. Empty
// subdirectories are shown with an empty subtree; "." and ".." are never
// descended into or printed since they are internal bookkeeping, not
// distinct children.
func (o *Ops) Tree(cwd fat12.ClusterID, path string) (string, error) {
	dir, err := o.resolveDir(cwd, path)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := o.renderTree(&b, dir, ""); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (o *Ops) renderTree(b *strings.Builder, dir fat12.ClusterID, prefix string) error {
	entries, _, err := o.Session.ListEntries(dir)
	if err != nil {
		return err
	}

	var children []fat12dir.Entry
	for _, e := range entries {
		if e.IsVolumeLabel() || e.Name == "." || e.Name == ".." {
			continue
		}
		children = append(children, e)
	}
	sort.SliceStable(children, func(i, j int) bool { return listLess(children[i], children[j]) })

	for i, e := range children {
		last := i == len(children)-1
		connector := "├── "
		nextPrefix := prefix + "│   "
		if last {
			connector = "└── "
			nextPrefix = prefix + "    "
		}
		b.WriteString(prefix)
		b.WriteString(connector)
		b.WriteString(e.Name)
		b.WriteByte('\n')
		if e.IsDir() {
			if err := o.renderTree(b, e.FirstCluster, nextPrefix); err != nil {
				return err
			}
		}
	}
	return nil
}
