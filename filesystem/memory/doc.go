// Package memory provides an in-memory filesystem driver.
//
// Disks using the "memory" driver share a Store per namespace (the disk
// name unless the namespace key is set), so two disks or two bindings of
// the same disk see the same objects. Stores support Reset, Snapshot and
// Restore for tests.
//
//	filesystem:
//	  disks:
//	    scratch:
//	      driver: memory
package memory
