// Package ffprobe runs ffprobe against a render source and decodes the
// stream and format metadata the pipeline needs to report progress.
//
// Prober is the collaborator handed to the caption orchestrator; its
// TotalFrames value comes from nb_frames on the first video stream, or
// duration times average frame rate when the container omits the count.
package ffprobe
