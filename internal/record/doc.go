// Package record implements the file-backed sticky port record.
//
// Each project checkout owns exactly one record: a plain decimal port
// number in a dotfile at the project root (default .portkeep-port),
// intended to be excluded from version control. The record is created on
// first successful resolution, overwritten whenever a new port is chosen,
// and removed only by an explicit `portkeep release`.
//
// A missing record and an unreadable one are distinct conditions
// (model.ErrRecordNotFound vs model.ErrRecordCorrupt); the resolver
// treats both as "no record".
package record
