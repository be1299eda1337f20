package badges

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"path"
)

//go:embed icons/*.svg
var iconFS embed.FS

const iconContentType = "image/svg+xml"

// IconSVG returns the bundled image for an icon key such as "badges/first_steps.svg".
func IconSVG(key string) ([]byte, error) {
	return iconFS.ReadFile("icons/" + path.Base(key))
}

// UploadIcons stores the bundled image of every catalog badge in the icon
// store and returns how many were uploaded.
func (s *Service) UploadIcons(ctx context.Context) (int, error) {
	if s.icons == nil {
		return 0, ErrNoIcon
	}
	n := 0
	for _, r := range s.rules {
		if r.Badge.Icon == "" {
			continue
		}
		data, err := IconSVG(r.Badge.Icon)
		if err != nil {
			return n, fmt.Errorf("icon for %s: %w", r.Badge.Code, err)
		}
		if err := s.icons.Upload(ctx, r.Badge.Icon, bytes.NewReader(data), int64(len(data)), iconContentType); err != nil {
			return n, fmt.Errorf("upload icon %s: %w", r.Badge.Icon, err)
		}
		n++
	}
	return n, nil
}
