package usecase

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"reelstitch/internal/domain"
	"reelstitch/internal/domain/model"
)

// MaxDimension bounds the requested output width and height.
const MaxDimension = 4096

// ValidateRequest checks the shape of req. It performs no I/O.
func ValidateRequest(req model.JobRequest) error {
	if err := validateURL("narration_url", req.NarrationURL); err != nil {
		return err
	}
	if len(req.VideoURLs) != len(model.VideoRoles) {
		return &domain.ValidationError{Field: "video_urls", Reason: "exactly 3 video URLs are required"}
	}
	for i, u := range req.VideoURLs {
		if err := validateURL(fmt.Sprintf("video_urls[%d]", i), u); err != nil {
			return err
		}
	}
	return validateGeometry(req.Width, req.Height)
}

func validateURL(field, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return &domain.ValidationError{Field: field, Reason: "required"}
	}
	if strings.TrimSpace(raw) != raw {
		return &domain.ValidationError{Field: field, Reason: "must not have surrounding whitespace"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return &domain.ValidationError{Field: field, Reason: "not a valid URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &domain.ValidationError{Field: field, Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return &domain.ValidationError{Field: field, Reason: "host is required"}
	}
	return nil
}

// normalizeRequest trims the URLs so the validated and the fetched strings
// are the same.
func normalizeRequest(req model.JobRequest) model.JobRequest {
	req.NarrationURL = strings.TrimSpace(req.NarrationURL)
	videos := make([]string, len(req.VideoURLs))
	for i, u := range req.VideoURLs {
		videos[i] = strings.TrimSpace(u)
	}
	req.VideoURLs = videos
	return req
}

func validateGeometry(w, h int) error {
	if w == 0 && h == 0 {
		return nil
	}
	if w == 0 || h == 0 {
		return &domain.ValidationError{Field: "width/height", Reason: "set both or neither"}
	}
	for _, d := range []struct {
		field string
		v     int
	}{{"width", w}, {"height", h}} {
		switch {
		case d.v < 0:
			return &domain.ValidationError{Field: d.field, Reason: "must be positive"}
		case d.v%2 != 0:
			return &domain.ValidationError{Field: d.field, Reason: "must be even"}
		case d.v > MaxDimension:
			return &domain.ValidationError{Field: d.field, Reason: "must not exceed 4096"}
		}
	}
	return nil
}

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)

// inputExt keeps a short, plain extension from the URL path so scratch files
// stay recognizable; anything unusual is dropped.
func inputExt(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}
