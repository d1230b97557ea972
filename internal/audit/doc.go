// Package audit checks that every content record points at an asset file
// that exists.
//
// Run lists the content records once and stats their assets with a pool of
// workers sized by the workers package. Auditor repeats Run on an interval
// in the server, publishing the missing count as a gauge, and the
// catalogcheck command calls Run directly.
//
// The audit is read-only. It never deletes records or files.
package audit
