package export

import (
	"context"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/gogpu/studio/document"
)

func init() {
	Register(Format{Name: "png", Extension: "png", MediaType: "image/png", Raster: true, Encoder: EncoderFunc(encodePNG)})
	Register(Format{Name: "jpeg", Extension: "jpg", MediaType: "image/jpeg", Raster: true, Encoder: EncoderFunc(encodeJPEG)})
	Register(Format{Name: "json", Extension: "json", MediaType: "application/json", Encoder: EncoderFunc(encodeSnapshot)})
}

func encodePNG(ctx context.Context, w io.Writer, s *document.Scene, o Options) error {
	img, err := o.renderer().Render(ctx, s, o.renderOptions())
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func encodeJPEG(ctx context.Context, w io.Writer, s *document.Scene, o Options) error {
	q, err := o.quality()
	if err != nil {
		return err
	}
	ro := o.renderOptions()
	ro.Transparent = false
	img, err := o.renderer().Render(ctx, s, ro)
	if err != nil {
		return err
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: max(1, int(q*100+0.5))})
}

func encodeSnapshot(ctx context.Context, w io.Writer, s *document.Scene, _ Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.Serialize()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
