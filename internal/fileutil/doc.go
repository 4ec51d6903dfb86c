// Package fileutil holds the atomic write and copy helpers shared by the
// result cache, job staging, and local storage.
package fileutil
