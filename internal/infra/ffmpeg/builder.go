package ffmpeg

import (
	"fmt"
	"strconv"

	"reelstitch/internal/domain/ports/adapter"
)

// Encoding carries the codec settings shared by both transcode stages.
type Encoding struct {
	VideoCodec   string
	Preset       string
	BaseCRF      int
	FinalCRF     int
	AudioCodec   string
	AudioBitrate string
}

// DefaultEncoding matches the service defaults: H.264 video, AAC 192k audio.
func DefaultEncoding() Encoding {
	return Encoding{
		VideoCodec:   "libx264",
		Preset:       "veryfast",
		BaseCRF:      18,
		FinalCRF:     20,
		AudioCodec:   "aac",
		AudioBitrate: "192k",
	}
}

func preamble() []string {
	return []string{"-hide_banner", "-nostdin", "-y", "-loglevel", "error"}
}

// ScaleCropFilter fills a w x h frame: scale up until both sides cover it,
// center-crop the overflow, square the pixels and pin the frame rate.
func ScaleCropFilter(w, h, fps int) string {
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1,fps=%d",
		w, h, w, h, fps,
	)
}

// BaseArgs concatenates the listed clips into one silent clip normalized to
// the requested geometry.
func BaseArgs(spec adapter.BaseSpec, enc Encoding) []string {
	args := make([]string, 0, 32)

	// --- Preamble ---
	args = append(args, preamble()...)

	// --- Input: concat demuxer, absolute paths allowed ---
	args = append(args, "-f", "concat", "-safe", "0", "-i", spec.ListPath)

	// --- Normalize geometry, drop audio ---
	args = append(args, "-vf", ScaleCropFilter(spec.Width, spec.Height, spec.FPS), "-an")

	// --- Video codec ---
	args = appendVideo(args, enc, enc.BaseCRF)

	// --- Container ---
	args = append(args, "-movflags", "+faststart", spec.OutputPath)
	return args
}

// FinalArgs loops the base clip indefinitely under the narration and stops
// at the shorter stream, which is always the narration.
func FinalArgs(spec adapter.FinalSpec, enc Encoding) []string {
	args := make([]string, 0, 40)

	// --- Preamble ---
	args = append(args, preamble()...)

	// --- Inputs: looped video, then narration ---
	args = append(args,
		"-stream_loop", "-1", "-i", spec.BasePath,
		"-i", spec.NarrationPath,
	)

	// --- Stream maps ---
	args = append(args, "-map", "0:v:0", "-map", "1:a:0", "-shortest")

	// --- Codecs ---
	args = appendVideo(args, enc, enc.FinalCRF)
	args = append(args, "-c:a", enc.AudioCodec, "-b:a", enc.AudioBitrate)

	// --- Container ---
	args = append(args, "-movflags", "+faststart", spec.OutputPath)
	return args
}

// FetchArgs copies every stream of a remote input into a local Matroska file
// without re-encoding.
func FetchArgs(rawURL, destPath string) []string {
	args := preamble()
	return append(args, "-i", rawURL, "-map", "0", "-c", "copy", "-f", "matroska", destPath)
}

func appendVideo(args []string, enc Encoding, crf int) []string {
	return append(args,
		"-c:v", enc.VideoCodec,
		"-preset", enc.Preset,
		"-crf", strconv.Itoa(crf),
		"-pix_fmt", "yuv420p",
	)
}
