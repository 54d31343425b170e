package barcode

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/liyue201/goqr"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Built-in backend names, referenced by chain configuration files.
const (
	DecoderMulti       = "multi"
	DecoderQR          = "qr"
	DecoderHeuristicQR = "heuristic-qr"
)

func builtinDecoders() map[string]Decoder {
	return map[string]Decoder{
		DecoderMulti:       NewMultiSymbologyDecoder(),
		DecoderQR:          NewQRDecoder(),
		DecoderHeuristicQR: NewHeuristicQRDecoder(),
	}
}

func decodeHints() map[gozxing.DecodeHintType]interface{} {
	return map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
}

// MultiSymbologyDecoder handles linear barcodes and QR symbols in one pass by
// consulting a one-dimensional multi-format reader and a QR reader.
type MultiSymbologyDecoder struct {
	readers []gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
}

// NewMultiSymbologyDecoder builds the general-purpose decoder.
func NewMultiSymbologyDecoder() *MultiSymbologyDecoder {
	hints := decodeHints()
	return &MultiSymbologyDecoder{
		readers: []gozxing.Reader{
			oned.NewMultiFormatOneDReader(hints),
			qrcode.NewQRCodeReader(),
		},
		hints: hints,
	}
}

func (d *MultiSymbologyDecoder) Name() string { return DecoderMulti }

func (d *MultiSymbologyDecoder) Decode(ctx context.Context, img image.Image) ([]Code, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("build bitmap: %w", err)
	}
	var codes []Code
	var failures []string
	for _, reader := range d.readers {
		res, err := reader.Decode(bmp, d.hints)
		if err != nil {
			failures = append(failures, err.Error())
			continue
		}
		if text := res.GetText(); text != "" {
			codes = append(codes, Code{Type: res.GetBarcodeFormat().String(), Data: text})
		}
	}
	if len(codes) == 0 {
		return nil, errors.New(summarizeFailures(failures))
	}
	return codes, nil
}

// QRDecoder consults only the dedicated QR reader.
type QRDecoder struct {
	reader gozxing.Reader
	hints  map[gozxing.DecodeHintType]interface{}
}

// NewQRDecoder builds the QR-only decoder.
func NewQRDecoder() *QRDecoder {
	return &QRDecoder{reader: qrcode.NewQRCodeReader(), hints: decodeHints()}
}

func (d *QRDecoder) Name() string { return DecoderQR }

func (d *QRDecoder) Decode(ctx context.Context, img image.Image) ([]Code, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("build bitmap: %w", err)
	}
	res, err := d.reader.Decode(bmp, d.hints)
	if err != nil {
		return nil, err
	}
	text := res.GetText()
	if text == "" {
		return nil, errors.New("qr symbol decoded empty")
	}
	return []Code{{Type: res.GetBarcodeFormat().String(), Data: text}}, nil
}

// HeuristicQRDecoder wraps the quirc-style recognizer, which locates QR
// finder patterns directly on the raw pixel array and tolerates distortions
// the bitmap-based readers reject.
type HeuristicQRDecoder struct{}

// NewHeuristicQRDecoder builds the heuristic QR backend.
func NewHeuristicQRDecoder() *HeuristicQRDecoder { return &HeuristicQRDecoder{} }

func (d *HeuristicQRDecoder) Name() string { return DecoderHeuristicQR }

func (d *HeuristicQRDecoder) Decode(ctx context.Context, img image.Image) ([]Code, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results, err := goqr.Recognize(img)
	if err != nil {
		return nil, err
	}
	var codes []Code
	for _, r := range results {
		if len(r.Payload) == 0 {
			continue
		}
		codes = append(codes, Code{Type: "QR_CODE", Data: string(r.Payload)})
	}
	if len(codes) == 0 {
		return nil, errors.New("no qr symbol found")
	}
	return codes, nil
}

func summarizeFailures(failures []string) string {
	if len(failures) == 0 {
		return "no symbol found"
	}
	return strings.Join(failures, "; ")
}
