package fat12ops

import (
	"time"

	"github.com/hashicorp/go-multierror"

	fat12 "github.com/gofat12/fat12edit"
	"github.com/gofat12/fat12edit/fat12dir"
	"github.com/gofat12/fat12edit/fat12file"
	"github.com/gofat12/fat12edit/fat12name"
)

// buildRawEntry assembles a fresh directory entry, stamping the current
// wall clock into its write-time fields.
func buildRawEntry(name string, attr uint8, firstCluster fat12.ClusterID, size uint32) fat12dir.RawEntry {
	var raw fat12dir.RawEntry
	raw.SetShortName(fat12name.ToShort(name))
	raw.Attr = attr
	raw.FirstCluster = uint16(firstCluster)
	raw.FileSize = size
	raw.WriteDate, raw.WriteTime = fat12dir.EncodeTimestamp(time.Now())
	return raw
}

// copyFileAs allocates a chain sized for `entry`'s content, copies its
// bytes, and appends a new entry named `name` into `destDir`. On any
// failure after allocation the newly allocated chain is freed.
func (o *Ops) copyFileAs(entry fat12dir.Entry, destDir fat12.ClusterID, name string) error {
	data, err := fat12file.ReadAll(o.Session.Image, o.Session.Boot, o.Session.FAT, entry)
	if err != nil {
		return err
	}

	newHead, newSize, err := fat12file.WriteAll(
		o.Session.Image, o.Session.Boot, o.Session.FAT, o.Session.Alloc, 0, data)
	if err != nil {
		return err
	}

	raw := buildRawEntry(name, entry.Attr, newHead, newSize)
	if _, err := o.Session.Append(destDir, raw); err != nil {
		if newHead != 0 {
			o.Session.Alloc.FreeChain(newHead)
		}
		return err
	}
	return nil
}

// Cp copies a file to a new location/name. `src` must be a file; `.`/`..`
// are rejected as target names.
func (o *Ops) Cp(cwd fat12.ClusterID, src, des string) error {
	srcEntry, _, err := o.Session.LocateByPath(cwd, src)
	if err != nil {
		return err
	}
	if srcEntry.IsDir() {
		return fat12.ErrWrongKind.WithMessage(src + " is a directory")
	}

	destDir, name, err := o.resolveDestination(cwd, des, srcEntry.Name)
	if err != nil {
		return err
	}
	return o.copyFileAs(srcEntry, destDir, name)
}

// Rm removes a file: frees its cluster chain and marks its entry deleted.
// `path` must resolve to a file, not a directory.
func (o *Ops) Rm(cwd fat12.ClusterID, path string) error {
	entry, pos, err := o.Session.LocateByPath(cwd, path)
	if err != nil {
		return err
	}
	if entry.IsDir() {
		return fat12.ErrWrongKind.WithMessage(path + " is a directory")
	}
	if entry.FirstCluster != 0 {
		if err := o.Session.Alloc.FreeChain(entry.FirstCluster); err != nil {
			return err
		}
	}
	return o.Session.MarkDeleted(pos)
}

// mkdirAt creates a new empty directory named `name` inside `parent`,
// returning its cluster number. Rolls back the allocated cluster (and any
// partially appended entries) on failure.
func (o *Ops) mkdirAt(parent fat12.ClusterID, name string) (fat12.ClusterID, error) {
	if name == "" {
		return 0, fat12.ErrIllegalPath.WithMessage("empty target name")
	}
	if name == "." || name == ".." {
		return 0, fat12.ErrReservedName.WithMessage(name)
	}
	if _, _, err := o.Session.LocateByName(parent, name); err == nil {
		return 0, fat12.ErrAlreadyExists.WithMessage(name)
	}

	newClus, err := o.Session.Alloc.AllocateChain(1, 0)
	if err != nil {
		return 0, err
	}

	parentEntry := buildRawEntry(name, fat12.AttrDirectory, newClus, 0)
	pos, err := o.Session.Append(parent, parentEntry)
	if err != nil {
		o.Session.Alloc.FreeChain(newClus)
		return 0, err
	}

	dotEntry := buildRawEntry(".", fat12.AttrDirectory, newClus, 0)
	if _, err := o.Session.Append(newClus, dotEntry); err != nil {
		return 0, rollbackMkdir(o, pos, newClus, err)
	}

	dotDotEntry := buildRawEntry("..", fat12.AttrDirectory, parent, 0)
	if _, err := o.Session.Append(newClus, dotDotEntry); err != nil {
		return 0, rollbackMkdir(o, pos, newClus, err)
	}

	return newClus, nil
}

func rollbackMkdir(o *Ops, pos fat12dir.Position, clus fat12.ClusterID, cause error) error {
	result := multierror.Append(nil, cause)
	if err := o.Session.MarkDeleted(pos); err != nil {
		result = multierror.Append(result, err)
	}
	if err := o.Session.Alloc.FreeChain(clus); err != nil {
		result = multierror.Append(result, err)
	}
	return result
}

// Mkdir creates a directory at `path`, resolved relative to `cwd`.
func (o *Ops) Mkdir(cwd fat12.ClusterID, path string) error {
	dirPart, name := splitLastSlash(path)
	parent, err := o.resolveDir(cwd, dirPart)
	if err != nil {
		return err
	}
	_, err = o.mkdirAt(parent, name)
	return err
}

// removeSubtree recursively frees every chain reachable from `dir`'s
// children without touching `dir`'s own chain.
func (o *Ops) removeSubtree(dir fat12.ClusterID) error {
	entries, _, err := o.Session.ListEntries(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." || e.IsVolumeLabel() {
			continue
		}
		if e.IsDir() {
			if err := o.removeSubtree(e.FirstCluster); err != nil {
				return err
			}
		}
		if e.FirstCluster != 0 {
			if err := o.Session.Alloc.FreeChain(e.FirstCluster); err != nil {
				return err
			}
		}
	}
	return nil
}

// Rmdir recursively removes a directory and everything under it. `path`
// must resolve to a directory that is not root and not "."/"..".
func (o *Ops) Rmdir(cwd fat12.ClusterID, path string) error {
	entry, pos, err := o.Session.LocateByPath(cwd, path)
	if err != nil {
		return err
	}
	if !entry.IsDir() {
		return fat12.ErrWrongKind.WithMessage(path + " is not a directory")
	}
	if pos == fat12dir.NoPosition {
		return fat12.ErrRootProtected.WithMessage("cannot remove root")
	}
	if entry.Name == "." || entry.Name == ".." {
		return fat12.ErrReservedName.WithMessage(path)
	}

	if err := o.removeSubtree(entry.FirstCluster); err != nil {
		return err
	}
	if err := o.Session.Alloc.FreeChain(entry.FirstCluster); err != nil {
		return err
	}
	return o.Session.MarkDeleted(pos)
}

// Mv resolves `src` strictly and moves it to a new location/name. If
// source is a directory, an ancestor check rejects moving it into itself
// or one of its own descendants.
func (o *Ops) Mv(cwd fat12.ClusterID, src, des string) error {
	srcEntry, srcPos, err := o.Session.LocateByPath(cwd, src)
	if err != nil {
		return err
	}
	if srcPos == fat12dir.NoPosition {
		return fat12.ErrRootProtected.WithMessage("cannot move root")
	}
	if srcEntry.Name == "." || srcEntry.Name == ".." {
		return fat12.ErrReservedName.WithMessage(src)
	}

	destDir, name, err := o.resolveDestination(cwd, des, srcEntry.Name)
	if err != nil {
		return err
	}

	if srcEntry.IsDir() {
		isAncestor, err := o.IsAncestor(srcEntry.FirstCluster, destDir)
		if err != nil {
			return err
		}
		if isAncestor {
			return fat12.ErrParentCycle.WithMessage(src + " is an ancestor of " + des)
		}
	}

	raw := buildRawEntry(name, srcEntry.Attr, srcEntry.FirstCluster, srcEntry.Size)
	if _, err := o.Session.Append(destDir, raw); err != nil {
		// Source entry is untouched; nothing to roll back.
		return err
	}
	return o.Session.MarkDeleted(srcPos)
}

// Concat reads two files' full content, allocates a chain sized for the
// combined bytes, and appends a new entry holding the concatenation.
func (o *Ops) Concat(cwd fat12.ClusterID, src1, src2, des string) error {
	e1, _, err := o.Session.LocateByPath(cwd, src1)
	if err != nil {
		return err
	}
	if e1.IsDir() {
		return fat12.ErrWrongKind.WithMessage(src1 + " is a directory")
	}
	e2, _, err := o.Session.LocateByPath(cwd, src2)
	if err != nil {
		return err
	}
	if e2.IsDir() {
		return fat12.ErrWrongKind.WithMessage(src2 + " is a directory")
	}

	d1, err := fat12file.ReadAll(o.Session.Image, o.Session.Boot, o.Session.FAT, e1)
	if err != nil {
		return err
	}
	d2, err := fat12file.ReadAll(o.Session.Image, o.Session.Boot, o.Session.FAT, e2)
	if err != nil {
		return err
	}
	combined := make([]byte, 0, len(d1)+len(d2))
	combined = append(combined, d1...)
	combined = append(combined, d2...)

	destDir, name, err := o.resolveDestination(cwd, des, "")
	if err != nil {
		return err
	}
	if name == "" {
		return fat12.ErrIllegalPath.WithMessage("empty target name")
	}

	newHead, newSize, err := fat12file.WriteAll(
		o.Session.Image, o.Session.Boot, o.Session.FAT, o.Session.Alloc, 0, combined)
	if err != nil {
		return err
	}

	raw := buildRawEntry(name, fat12.AttrArchive, newHead, newSize)
	if _, err := o.Session.Append(destDir, raw); err != nil {
		if newHead != 0 {
			o.Session.Alloc.FreeChain(newHead)
		}
		return err
	}
	return nil
}

// copyTree recursively copies srcDir's children into destDir: subdirectories
// are recreated with mkdirAt and recursed into, files are copied with
// copyFileAs.
func (o *Ops) copyTree(srcDir, destDir fat12.ClusterID) error {
	entries, _, err := o.Session.ListEntries(srcDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." || e.IsVolumeLabel() {
			continue
		}
		if e.IsDir() {
			childClus, err := o.mkdirAt(destDir, e.Name)
			if err != nil {
				return err
			}
			if err := o.copyTree(e.FirstCluster, childClus); err != nil {
				return err
			}
			continue
		}
		if err := o.copyFileAs(e, destDir, e.Name); err != nil {
			return err
		}
	}
	return nil
}

// CpDir recursively copies a directory tree to a new location. The
// destination is created fresh via mkdir; an ancestor check rejects
// copying a directory into its own subtree, rolling back the freshly
// created destination. Any failure partway through the recursive copy
// also rolls back the destination via rmdir.
func (o *Ops) CpDir(cwd fat12.ClusterID, src, des string) error {
	srcEntry, _, err := o.Session.LocateByPath(cwd, src)
	if err != nil {
		return err
	}
	if !srcEntry.IsDir() {
		return fat12.ErrWrongKind.WithMessage(src + " is not a directory")
	}

	if err := o.Mkdir(cwd, des); err != nil {
		return err
	}

	destEntry, _, err := o.Session.LocateByPath(cwd, des)
	if err != nil {
		return err
	}

	isAncestor, err := o.IsAncestor(srcEntry.FirstCluster, destEntry.FirstCluster)
	if err != nil {
		o.Rmdir(cwd, des)
		return err
	}
	if isAncestor {
		o.Rmdir(cwd, des)
		return fat12.ErrParentCycle.WithMessage(src + " is an ancestor of " + des)
	}

	if err := o.copyTree(srcEntry.FirstCluster, destEntry.FirstCluster); err != nil {
		o.Rmdir(cwd, des)
		return err
	}
	return nil
}
