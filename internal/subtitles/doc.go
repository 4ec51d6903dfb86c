// Package subtitles parses, re-times, and writes caption tracks.
//
// Payloads arrive as SubRip, WebVTT, or ASS Dialogue events and are decoded
// into a Track of cues. Expand splits cues into per-word karaoke cues for
// one-word highlighting, and Prepare serializes the result as SRT or as a full
// ASS document carrying the compiled caption style.
package subtitles
