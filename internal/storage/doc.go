// Package storage publishes rendered videos and returns a durable reference.
//
// Two backends exist: LocalUploader copies artifacts into a directory (useful
// for development and NFS-backed serving) and S3Uploader writes objects to an
// S3-compatible bucket through aws-sdk-go-v2. Errors are tagged with
// services.ErrStorage.
package storage
