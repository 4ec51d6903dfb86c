// Package captions owns caption styling: the option set a job submits, its
// validation against the font catalog, and compilation into the style line or
// force_style list ffmpeg consumes for each subtitle dialect.
package captions
