// Package deps reports whether the external binaries the pipeline shells out
// to (ffmpeg, ffprobe, fc-list) are installed.
package deps
