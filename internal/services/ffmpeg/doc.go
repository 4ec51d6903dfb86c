// Package ffmpeg drives the ffmpeg CLI to burn subtitles into a video.
//
// The renderer streams "-progress pipe:1" output, reports frame counts to a
// callback, keeps the source audio stream with "-c:a copy", and returns a
// *RenderError holding the tail of stderr when ffmpeg fails.
package ffmpeg
