package fat12ops_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsAncestor_RootIsAncestorOfEverything(t *testing.T) {
	ops := newOps(t)
	require.NoError(t, ops.Mkdir(0, "a"))
	aEntry, _, err := ops.Session.LocateByPath(0, "a")
	require.NoError(t, err)

	isAnc, err := ops.IsAncestor(0, aEntry.FirstCluster)
	require.NoError(t, err)
	require.True(t, isAnc)
}

func TestIsAncestor_SelfIsAncestorOfSelf(t *testing.T) {
	ops := newOps(t)
	require.NoError(t, ops.Mkdir(0, "a"))
	aEntry, _, err := ops.Session.LocateByPath(0, "a")
	require.NoError(t, err)

	isAnc, err := ops.IsAncestor(aEntry.FirstCluster, aEntry.FirstCluster)
	require.NoError(t, err)
	require.True(t, isAnc)
}

func TestIsAncestor_SiblingIsNotAncestor(t *testing.T) {
	ops := newOps(t)
	require.NoError(t, ops.Mkdir(0, "a"))
	require.NoError(t, ops.Mkdir(0, "b"))
	aEntry, _, err := ops.Session.LocateByPath(0, "a")
	require.NoError(t, err)
	bEntry, _, err := ops.Session.LocateByPath(0, "b")
	require.NoError(t, err)

	isAnc, err := ops.IsAncestor(aEntry.FirstCluster, bEntry.FirstCluster)
	require.NoError(t, err)
	require.False(t, isAnc)
}

func TestIsAncestor_DeepDescendant(t *testing.T) {
	ops := newOps(t)
	require.NoError(t, ops.Mkdir(0, "a"))
	require.NoError(t, ops.Mkdir(0, "a/b"))
	require.NoError(t, ops.Mkdir(0, "a/b/c"))

	aEntry, _, err := ops.Session.LocateByPath(0, "a")
	require.NoError(t, err)
	cEntry, _, err := ops.Session.LocateByPath(0, "a/b/c")
	require.NoError(t, err)

	isAnc, err := ops.IsAncestor(aEntry.FirstCluster, cEntry.FirstCluster)
	require.NoError(t, err)
	require.True(t, isAnc)
}
