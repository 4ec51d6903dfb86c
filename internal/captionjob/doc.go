// Package captionjob runs caption jobs end to end.
//
// Orchestrator.Run validates a job, computes its fingerprint, answers from the
// result cache when possible, and otherwise downloads the source, materializes
// the subtitle track, renders it with ffmpeg, uploads the artifact, and records
// the result. The job staging directory is removed on every path. BatchRunner
// fans many jobs out over a bounded worker pool and returns results in input
// order, with each failure captured on its own Result.
package captionjob
