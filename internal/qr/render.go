// Package qr renders verification payloads into scannable PNG files.
package qr

import (
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/Sakethsreeram7/food-tracker/internal/domain"
)

// Renderer writes one PNG per date under dir. Re-rendering a date overwrites
// the previous image, so a rotated token invalidates the old file in place.
type Renderer struct {
	dir string
}

// NewRenderer creates the target directory if needed.
func NewRenderer(dir string) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Renderer{dir: dir}, nil
}

// Render encodes payload into a PNG and returns its path.
func (r *Renderer) Render(payload string, date domain.Date) (string, error) {
	path := filepath.Join(r.dir, "qr_"+date.String()+".png")
	if err := qrcode.WriteFile(payload, qrcode.Medium, 256, path); err != nil {
		return "", err
	}
	return path, nil
}
