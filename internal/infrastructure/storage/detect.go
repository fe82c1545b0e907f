package storage

import (
	"bytes"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// sniffLen matches the header size mimetype inspects by default.
const sniffLen = 3072

var ErrNotImage = errors.New("file is not a supported image")

var allowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/heic",
	"image/heif",
}

type Detected struct {
	ContentType string
	Extension   string
}

// DetectImage sniffs the head of r and returns the detected type together with a reader
// that replays the full content.
func DetectImage(r io.Reader) (*Detected, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, nil, errors.Wrap(err, "read upload header")
	}
	head = head[:n]
	if n == 0 {
		return nil, nil, errors.Wrap(ErrNotImage, "empty file")
	}

	mtype := mimetype.Detect(head)
	if !isAllowedImage(mtype) {
		return nil, nil, errors.Wrapf(ErrNotImage, "detected %s", mtype.String())
	}

	return &Detected{
		ContentType: baseType(mtype.String()),
		Extension:   mtype.Extension(),
	}, io.MultiReader(bytes.NewReader(head), r), nil
}

func isAllowedImage(mtype *mimetype.MIME) bool {
	for _, allowed := range allowedImageTypes {
		if mtype.Is(allowed) {
			return true
		}
	}
	return false
}

func baseType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		return contentType[:i]
	}
	return contentType
}
