// Package preflight provides readiness checks for the binaries, directories,
// fonts, and storage target captionforge depends on.
//
// These checks run in two contexts:
//   - The "captionforge check" command prints every result.
//   - render and batch call RunAll before the first job and refuse to start
//     when a check fails, so a batch never dies halfway on a bad setup.
package preflight
