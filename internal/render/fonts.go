package render

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontData holds raw TrueType/OpenType bytes for the header and caption
// fonts. The bytes are shared read-only; every Composer parses its own copy
// because parsed faces are not safe for concurrent use.
type FontData struct {
	Header     []byte
	Transcript []byte
}

// LoadFontData reads font files. Blank paths fall back to the bundled Go
// fonts (Go Bold for the header, Go Regular for captions).
func LoadFontData(headerPath, transcriptPath string) (FontData, error) {
	header, err := readFont(headerPath, gobold.TTF)
	if err != nil {
		return FontData{}, err
	}
	transcript, err := readFont(transcriptPath, goregular.TTF)
	if err != nil {
		return FontData{}, err
	}
	return FontData{Header: header, Transcript: transcript}, nil
}

func readFont(path string, fallback []byte) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	if _, err := opentype.Parse(data); err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return data, nil
}

// fontSet caches faces by size for one parsed font.
type fontSet struct {
	font  *opentype.Font
	faces map[int]font.Face
}

func newFontSet(data []byte, fallback []byte) (*fontSet, error) {
	if len(data) == 0 {
		data = fallback
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &fontSet{font: f, faces: make(map[int]font.Face)}, nil
}

func (s *fontSet) face(size int) (font.Face, error) {
	size = max(size, 6)
	if face, ok := s.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(s.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face %dpx: %w", size, err)
	}
	s.faces[size] = face
	return face, nil
}
