package photos

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Extensions a player photo may be stored under. Writing one removes the others.
var knownExtensions = []string{".png", ".jpg", ".webp"}

// ExtFrom picks the file extension for a downloaded image. The content type wins; the
// URL path suffix is the fallback; ".jpg" is the default.
func ExtFrom(contentType, rawURL string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "png"):
		return ".png"
	case strings.Contains(ct, "webp"):
		return ".webp"
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		return ".jpg"
	}

	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	switch ext := strings.ToLower(path.Ext(p)); ext {
	case ".png", ".webp", ".jpg":
		return ext
	case ".jpeg":
		return ".jpg"
	}
	return ".jpg"
}

// ContentType returns the image type of a downloaded body. A header that already names
// png, webp or jpeg is trusted; otherwise the body is sniffed and must be an image.
func ContentType(header string, body []byte) (string, error) {
	ct := strings.ToLower(header)
	for _, known := range []string{"png", "webp", "jpeg", "jpg"} {
		if strings.Contains(ct, known) {
			return header, nil
		}
	}

	detected := mimetype.Detect(body)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", fmt.Errorf("downloaded content is %s, not an image", detected.String())
	}
	return detected.String(), nil
}
