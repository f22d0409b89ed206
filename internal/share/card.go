package share

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/models"
)

// ErrEmptyMessage is returned when there is nothing to put on a card.
var ErrEmptyMessage = errors.New("no message to share")

var (
	white     = color.RGBA{0xff, 0xff, 0xff, 0xff}
	slate900  = color.RGBA{0x0f, 0x17, 0x2a, 0xff}
	slate400  = color.RGBA{0x94, 0xa3, 0xb8, 0xff}
	slate200  = color.RGBA{0xe2, 0xe8, 0xf0, 0xff}
	slate100  = color.RGBA{0xf1, 0xf5, 0xf9, 0xff}
	slate50   = color.RGBA{0xf8, 0xfa, 0xfc, 0xff}
	face      = basicfont.Face7x13
	lineGap   = 1.5
	marginX   = 120
	bodyTop   = 260
	bodyBot   = 800
	barWidth  = 16
	maxScales = []int{6, 5, 4, 3, 2}
)

// The bitmap face only covers ASCII; typographic punctuation from the
// generator is folded to its plain form.
var asciiPunct = strings.NewReplacer(
	"\u2018", "'", "\u2019", "'",
	"\u201c", `"`, "\u201d", `"`,
	"\u2013", "-", "\u2014", "-",
	"\u2026", "...",
)

// Filename returns the export name for a card, e.g.
// SoftWorkday-end-of-day-1714815000000.png.
func Filename(tod models.TimeOfDay, now time.Time) string {
	slot := strings.Join(strings.Fields(tod.Label()), "-")
	return fmt.Sprintf("%s%s-%d%s", constants.CardFilePrefix, slot, now.UnixMilli(), constants.CardFileSuffix)
}

// RenderCard draws the square share card for a message.
func RenderCard(message string, tod models.TimeOfDay) (*image.RGBA, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	size := constants.CardSize
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)

	// Soft circle in the top-right corner and the dark left bar.
	fillCircle(img, size-100, 100, 300, slate50)
	draw.Draw(img, image.Rect(0, 0, barWidth, size), image.NewUniform(slate900), image.Point{}, draw.Src)

	header := strings.ToUpper(tod.Label() + " baseline")
	drawCentered(img, spaced(header), 150, 3, slate400)
	draw.Draw(img, image.Rect(size/2-24, 200, size/2+24, 201), image.NewUniform(slate200), image.Point{}, draw.Src)

	drawBody(img, `"`+asciiPunct.Replace(message)+`"`)

	// Wordmark block.
	draw.Draw(img, image.Rect(330, 880, 394, 944), image.NewUniform(slate900), image.Point{}, draw.Src)
	fillCircle(img, 362, 912, 7, white)
	drawText(img, constants.Wordmark, 414, 900, 3, slate900)
	drawText(img, constants.Tagline, 414, 936, 2, slate400)

	// Watermark.
	wm := constants.Wordmark
	drawText(img, wm, size-80-textWidth(wm)*8, size-40-13*8, 8, slate100)

	return img, nil
}

// Export renders the card and writes it as a PNG into dir.
func Export(dir, message string, tod models.TimeOfDay, now time.Time) (string, error) {
	img, err := RenderCard(message, tod)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, Filename(tod, now))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create card file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to encode card: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write card file: %w", err)
	}
	return path, nil
}

// drawBody wraps the message at the largest scale that fits the body box.
func drawBody(img *image.RGBA, text string) {
	width := constants.CardSize - 2*marginX
	for _, scale := range maxScales {
		lines := wrap(text, width/scale)
		lineHeight := int(float64(face.Height*scale) * lineGap)
		total := lineHeight * len(lines)
		if total > bodyBot-bodyTop && scale != maxScales[len(maxScales)-1] {
			continue
		}
		y := bodyTop + (bodyBot-bodyTop-total)/2
		for _, line := range lines {
			drawCentered(img, line, y, scale, slate900)
			y += lineHeight
		}
		return
	}
}

// wrap splits text into lines no wider than maxWidth unscaled pixels.
func wrap(text string, maxWidth int) []string {
	var lines []string
	var current string
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if textWidth(candidate) <= maxWidth || current == "" {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func spaced(s string) string {
	return strings.Join(strings.Split(s, ""), " ")
}

func textWidth(s string) int {
	return font.MeasureString(face, s).Ceil()
}

func drawCentered(img *image.RGBA, text string, y, scale int, c color.Color) {
	x := (constants.CardSize - textWidth(text)*scale) / 2
	drawText(img, text, x, y, scale, c)
}

// drawText renders text with the bitmap face at 1x, then scales it onto img
// with its top-left corner at (x, y).
func drawText(img *image.RGBA, text string, x, y, scale int, c color.Color) {
	w, h := textWidth(text), face.Height
	if w == 0 {
		return
	}
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	dst := image.Rect(x, y, x+w*scale, y+h*scale)
	draw.NearestNeighbor.Scale(img, dst, small, small.Bounds(), draw.Over, nil)
}

func fillCircle(img *image.RGBA, cx, cy, r int, c color.Color) {
	b := img.Bounds()
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if !(image.Point{x, y}).In(b) {
				continue
			}
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, c)
			}
		}
	}
}
