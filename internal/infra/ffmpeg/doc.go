// Package ffmpeg builds the ffmpeg command lines used by the stitch pipeline
// and runs them through an adapter.CommandRunner.
//
// Every command shares one preamble (no banner, no stdin, overwrite, errors
// only) so diagnostics captured on failure stay short and relevant.
package ffmpeg
