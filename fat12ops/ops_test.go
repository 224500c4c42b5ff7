package fat12ops_test

import (
	"testing"

	fat12 "github.com/gofat12/fat12edit"
	"github.com/gofat12/fat12edit/fat12dir"
	"github.com/gofat12/fat12edit/fat12file"
	"github.com/gofat12/fat12edit/fat12ops"
	"github.com/gofat12/fat12edit/fat12test"
	"github.com/stretchr/testify/require"
)

func newOps(t *testing.T) *fat12ops.Ops {
	t.Helper()
	img, boot := fat12test.NewFixtureImage()
	session, err := fat12dir.Open(img, boot)
	require.NoError(t, err)
	return fat12ops.New(session)
}

// Scenario 1: mkdir a, mkdir a/b, cd /a/b, cd .., cd ../..
func TestScenario_MkdirAndCd(t *testing.T) {
	ops := newOps(t)

	require.NoError(t, ops.Mkdir(0, "a"))
	require.NoError(t, ops.Mkdir(0, "a/b"))

	handle, err := ops.Cd(fat12ops.RootHandle, "/a/b")
	require.NoError(t, err)
	require.Equal(t, "/a/b", handle.AbsPath)
	bClus := handle.ClusterNumber

	handle, err = ops.Cd(handle, "..")
	require.NoError(t, err)
	require.Equal(t, "/a", handle.AbsPath)

	handle, err = ops.Cd(handle, "../..")
	require.NoError(t, err)
	require.Equal(t, "/", handle.AbsPath)
	require.Equal(t, fat12.ClusterID(0), handle.ClusterNumber)
	require.NotEqual(t, fat12.ClusterID(0), bClus)
}

// Scenario 2: copying a 1,500-byte file yields a disjoint 3-cluster chain
// with identical contents.
func TestScenario_CopyFileDisjointChain(t *testing.T) {
	ops := newOps(t)

	content := make([]byte, 1500)
	for i := range content {
		content[i] = byte(i % 251)
	}
	writeFileDirect(t, ops, 0, "X.TXT", content)

	require.NoError(t, ops.Cp(0, "X.TXT", "Y.TXT"))

	entries, err := ops.List(0, "")
	require.NoError(t, err)

	var x, y *fat12dir.Entry
	for i := range entries {
		switch entries[i].Name {
		case "X.TXT":
			x = &entries[i]
		case "Y.TXT":
			y = &entries[i]
		}
	}
	require.NotNil(t, x)
	require.NotNil(t, y)
	require.Equal(t, x.Size, y.Size)
	require.NotEqual(t, x.FirstCluster, y.FirstCluster)

	yData, err := ops.Type(0, "Y.TXT")
	require.NoError(t, err)
	require.Equal(t, content, yData)
}

// Scenario 3: mv /a /a/b must fail with PARENT_CYCLE, image unchanged.
func TestScenario_MoveIntoOwnSubtreeIsParentCycle(t *testing.T) {
	ops := newOps(t)

	require.NoError(t, ops.Mkdir(0, "a"))
	require.NoError(t, ops.Mkdir(0, "a/b"))

	err := ops.Mv(0, "a", "a/b")
	require.ErrorIs(t, err, fat12.ErrParentCycle)

	entries, err := ops.List(0, "")
	require.NoError(t, err)
	foundA := false
	for _, e := range entries {
		if e.Name == "A" {
			foundA = true
		}
	}
	require.True(t, foundA, "a must still exist at root after the failed move")
}

// Scenario 4: mkdir /a/b/c; rmdir /a/b frees b and c's clusters and removes
// /a/b from the tree.
func TestScenario_RmdirFreesSubtree(t *testing.T) {
	ops := newOps(t)

	require.NoError(t, ops.Mkdir(0, "a"))
	require.NoError(t, ops.Mkdir(0, "a/b"))
	require.NoError(t, ops.Mkdir(0, "a/b/c"))

	freeBefore := ops.Session.Alloc.FreeCount()

	require.NoError(t, ops.Rmdir(0, "a/b"))

	_, _, err := ops.Session.LocateByPath(0, "a/b")
	require.ErrorIs(t, err, fat12.ErrNotFound)

	freeAfter := ops.Session.Alloc.FreeCount()
	require.Greater(t, freeAfter, freeBefore)
}

// Scenario 5: concat u v w produces w = "helloworld!".
func TestScenario_Concat(t *testing.T) {
	ops := newOps(t)

	writeFileDirect(t, ops, 0, "U", []byte("hello"))
	writeFileDirect(t, ops, 0, "V", []byte("world!"))

	require.NoError(t, ops.Concat(0, "U", "V", "W"))

	data, err := ops.Type(0, "W")
	require.NoError(t, err)
	require.Equal(t, []byte("helloworld!"), data)
}

// Scenario 6: filling the root directory with directories makes mkdir fail
// with ROOT_FULL; removing one of them with rmdir frees a slot.
func TestScenario_RootFullThenRecovered(t *testing.T) {
	ops := newOps(t)

	var lastErr error
	count := 0
	for i := 0; i < 500; i++ {
		name := fileNameForIndex(i)
		lastErr = ops.Mkdir(0, name)
		if lastErr != nil {
			break
		}
		count++
	}
	require.ErrorIs(t, lastErr, fat12.ErrRootFull)

	err := ops.Mkdir(0, "ZZZZZZZZ")
	require.ErrorIs(t, err, fat12.ErrRootFull)

	require.NoError(t, ops.Rmdir(0, fileNameForIndex(0)))
	require.NoError(t, ops.Mkdir(0, "ZZZZZZZZ"))
}

func fileNameForIndex(i int) string {
	letters := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	return string([]byte{letters[i%26], letters[(i/26)%26], letters[(i/676)%26]})
}

// writeFileDirect creates a file with the given content directly through
// the session, bypassing Ops (there is no "create" op distinct from cp --
// Ops always copies from an existing file).
func writeFileDirect(t *testing.T, ops *fat12ops.Ops, dir fat12.ClusterID, name string, content []byte) {
	t.Helper()

	var head fat12.ClusterID
	var size uint32
	if len(content) > 0 {
		var err error
		head, size, err = fat12file.WriteAll(
			ops.Session.Image, ops.Session.Boot, ops.Session.FAT, ops.Session.Alloc, 0, content)
		require.NoError(t, err)
	}

	var raw fat12dir.RawEntry
	var shortName [11]byte
	for i := range shortName {
		shortName[i] = ' '
	}
	copy(shortName[:], name)
	raw.SetShortName(shortName)
	raw.Attr = fat12.AttrArchive
	raw.FirstCluster = uint16(head)
	raw.FileSize = size
	_, err := ops.Session.Append(dir, raw)
	require.NoError(t, err)
}
