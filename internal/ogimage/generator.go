package ogimage

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/riverfold/inkpress/internal/common"
)

const (
	Width  = 1200
	Height = 630

	titleSize  = 64.0
	footerSize = 28.0
	marginX    = 80
	imageTTL   = time.Hour
)

var (
	backgroundColor = color.RGBA{R: 0x10, G: 0x10, B: 0x18, A: 0xff}
	titleColor      = color.RGBA{R: 0xf5, G: 0xf5, B: 0xf0, A: 0xff}
	footerColor     = color.RGBA{R: 0x8a, G: 0x8a, B: 0x9a, A: 0xff}
)

// Generator renders 1200×630 social preview images. The parsed font is
// cached by URL for the process lifetime; rendered PNGs are cached by slug
// with a TTL, expired lazily on access. Concurrent misses may render the
// same image twice, which is harmless because results are idempotent.
type Generator struct {
	client   *http.Client
	cache    *common.Cache
	fontURL  string
	siteName string
	logger   *slog.Logger
}

func NewGenerator(fontURL, siteName string, cache *common.Cache, logger *slog.Logger) *Generator {
	return &Generator{
		client:   &http.Client{Timeout: 10 * time.Second},
		cache:    cache,
		fontURL:  fontURL,
		siteName: siteName,
		logger:   logger,
	}
}

// ETag derives the weak validator for a post's image from its slug and last
// update time.
func ETag(slug string, updatedAt time.Time) string {
	sum := blake2b.Sum256([]byte(slug + ":" + strconv.FormatInt(updatedAt.Unix(), 10)))
	return `W/"` + hex.EncodeToString(sum[:8]) + `"`
}

// Image returns the rendered PNG for a post, from cache when fresh.
func (g *Generator) Image(ctx context.Context, slug, title string) ([]byte, error) {
	if cached, ok := g.cache.Get(common.CacheKeyOGImage(slug)); ok {
		return cached.([]byte), nil
	}

	img, err := g.render(ctx, title)
	if err != nil {
		return nil, err
	}

	g.cache.Set(common.CacheKeyOGImage(slug), img, imageTTL)
	return img, nil
}

func (g *Generator) render(ctx context.Context, title string) ([]byte, error) {
	f, err := g.font(ctx)
	if err != nil {
		return nil, err
	}

	titleFace, err := opentype.NewFace(f, &opentype.FaceOptions{Size: titleSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("could not create title face: %w", err)
	}
	defer titleFace.Close()

	footerFace, err := opentype.NewFace(f, &opentype.FaceOptions{Size: footerSize, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("could not create footer face: %w", err)
	}
	defer footerFace.Close()

	canvas := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(titleColor),
		Face: titleFace,
	}

	lines := wrapText(drawer, title, Width-2*marginX)
	lineHeight := titleFace.Metrics().Height.Ceil()
	y := Height/2 - (len(lines)-1)*lineHeight/2

	for _, line := range lines {
		drawer.Dot = fixed.P(marginX, y)
		drawer.DrawString(line)
		y += lineHeight
	}

	footer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(footerColor),
		Face: footerFace,
	}
	footer.Dot = fixed.P(marginX, Height-60)
	footer.DrawString(g.siteName)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("could not encode image: %w", err)
	}

	return buf.Bytes(), nil
}

// font fetches and parses the configured font, hitting the network at most
// once per URL per process.
func (g *Generator) font(ctx context.Context) (*opentype.Font, error) {
	if cached, ok := g.cache.Get(common.CacheKeyFont(g.fontURL)); ok {
		return cached.(*opentype.Font), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.fontURL, nil)
	if err != nil {
		return nil, err
	}

	res, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch font: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("could not fetch font: status %d", res.StatusCode)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	f, err := opentype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("could not parse font: %w", err)
	}

	g.cache.Set(common.CacheKeyFont(g.fontURL), f, -1)
	return f, nil
}

// wrapText breaks the title into lines that fit the drawable width. A single
// overlong word is kept on its own line rather than dropped.
func wrapText(d *font.Drawer, text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if d.MeasureString(candidate).Ceil() > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	lines = append(lines, current)

	return lines
}
