// Package testutil runs the filekit file server inside tests.
//
//	disk := testutil.NewDisk("local")
//	testutil.T(t).Setup(disk)
//	srv := servertest.NewComponent(disk.Storage())
//	testutil.T(t).Setup(srv)
//	resp, _ := http.Get(srv.FileURL("local", "a.txt"))
package testutil
