// Package testutil provides lifecycle helpers for tests of filekit code.
//
// TestComponent extends component.Component with Reset, Snapshot and
// Restore. Disk is a ready-made TestComponent: a filesystem.Storage bound
// to an in-memory disk whose content can be cleared or rolled back
// between cases.
//
//	func TestUpload(t *testing.T) {
//	    disk := testutil.NewDisk("local")
//	    testutil.T(t).Setup(disk)
//
//	    snap := testutil.T(t).Snapshot(disk)
//	    // exercise code against disk.Storage()
//	    testutil.T(t).Restore(disk, snap)
//	}
//
// Manager drives several components together: started in order, stopped in
// reverse order.
package testutil
