package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// maxPhotoBytes keeps photos well under the server's body limit.
const maxPhotoBytes = 8 << 20

var errNotImage = errors.New("not an image file")

// encodePhoto reads an image file and returns it as a data URL, the form
// photos are stored in.
func encodePhoto(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > maxPhotoBytes {
		return "", fmt.Errorf("%s is larger than %d MiB", path, maxPhotoBytes>>20)
	}

	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("%s: %w (%s)", path, errNotImage, ct)
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// photoSummary describes a stored photo without dumping it.
func photoSummary(photo string) string {
	if photo == "" {
		return "none"
	}
	if mime, _, ok := strings.Cut(strings.TrimPrefix(photo, "data:"), ";"); ok && strings.HasPrefix(photo, "data:") {
		return fmt.Sprintf("%s, %d KiB", mime, len(photo)*3/4/1024)
	}
	return fmt.Sprintf("%d KiB", len(photo)/1024)
}

// photo asks for an image path. Empty keeps current, "-" removes it.
func (p prompter) photo(current string) (string, error) {
	for range maxAttempts {
		v, err := p.text(fmt.Sprintf("Photo file (current: %s; Enter keeps, - removes)", photoSummary(current)), "")
		if err != nil {
			return "", err
		}
		switch v {
		case "":
			return current, nil
		case "-":
			return "", nil
		}
		enc, err := encodePhoto(v)
		if err == nil {
			return enc, nil
		}
		fmt.Fprintln(p.w, "Cannot use photo:", err)
	}
	return "", errTooManyAttempts
}
