// Package util holds small helpers shared by the filekit command and
// packages: credential masking for displayed disk options and Coalesce.
package util
