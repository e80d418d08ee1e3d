package catalog

import (
	"github.com/youssefsiam38/volumetric"
	"github.com/youssefsiam38/volumetric/schema"
)

// ImageGalleryProps are the props of the ImageGallery template.
type ImageGalleryProps struct {
	Title   string         `json:"title"`
	Columns int            `json:"columns"`
	Images  []GalleryImage `json:"images"`
}

// GalleryImage is one tile. Asset is a registered asset id or a
// description of the image to generate.
type GalleryImage struct {
	Asset   string `json:"asset"`
	Caption string `json:"caption"`
	Phrase  string `json:"phrase"`
}

func (p *ImageGalleryProps) TemplateKey() string { return KeyImageGallery }

func (p *ImageGalleryProps) Normalize() {
	if p.Title == "" {
		p.Title = "Gallery"
	}
	p.Columns = clampColumns(p.Columns, 3)
	if p.Images == nil {
		p.Images = []GalleryImage{}
	}
}

func imageGallery() *volumetric.TemplateDescriptor {
	return define(KeyImageGallery,
		"Grid of images with captions; unregistered images show a placeholder.",
		"image_gallery.html",
		schema.NewObject(map[string]schema.PropertyDef{
			"title":   schema.String("Section heading"),
			"columns": {Type: "integer", Description: "Columns, 1 to 4, default 3", Minimum: ptr(1.0), Maximum: ptr(4.0)},
			"images": schema.Array("Images", schema.Struct("Image", map[string]schema.PropertyDef{
				"asset":   schema.String("Asset id or an image description to generate"),
				"caption": schema.String("Caption"),
				"phrase":  schema.Phrase("What the user says when clicking the image"),
			})),
		}),
		func() *ImageGalleryProps { return &ImageGalleryProps{} },
	)
}
