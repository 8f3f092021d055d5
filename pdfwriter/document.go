package pdfwriter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ImageResource is the resource name under which a page's full-page image is drawn.
const ImageResource = "Im1"

// Fixed low ids.
const (
	CatalogID = 1
	PagesID   = 2
	InfoID    = 3
)

var errMixedPages = errors.New("pdfwriter: pages must be either all images or all text")

// Font is a standard Type1 font shared by all pages under a resource name such as F1.
type Font struct {
	Resource string
	BaseFont string
}

// Image is a compressed still image, e.g. a JPEG with Filter DCTDecode.
type Image struct {
	Data       []byte
	Width      int // pixels
	Height     int // pixels
	Filter     string
	ColorSpace string
}

// Page is one committed page: its size in points, its content stream and, for raster
// pages, the image the content draws.
type Page struct {
	Width   float64
	Height  float64
	Content []byte
	Image   *Image
}

// ImagePage returns a page whose content paints img over the whole media box.
func ImagePage(width, height float64, img *Image) Page {
	content := fmt.Sprintf("q %s 0 0 %s 0 0 cm /%s Do Q", FormatNumber(width), FormatNumber(height), ImageResource)
	return Page{Width: width, Height: height, Content: []byte(content), Image: img}
}

// Info is the document information dictionary.
type Info struct {
	Title        string
	Author       string
	Subject      string
	Keywords     string
	Creator      string
	Producer     string
	CreationDate time.Time
}

// Document is the logical content of one PDF file.
type Document struct {
	Info  Info
	Fonts []Font
	Pages []Page
}

// PageIDs are the ids allocated to one page. Image is 0 for text pages.
type PageIDs struct {
	Page    int
	Image   int
	Content int
}

// Plan is the id allocation of a document. It depends only on the number of fonts,
// the number of pages and whether pages carry images.
type Plan struct {
	Catalog int
	Pages   int
	Info    int
	Fonts   []int
	PageIDs []PageIDs
	Highest int
}

// PlanIDs allocates ids: catalog 1, page tree 2, info 3, fonts 4..3+fonts, then per page
// a fixed stride of page, image (raster only) and content stream.
func PlanIDs(fonts, pages int, images bool) Plan {
	p := Plan{Catalog: CatalogID, Pages: PagesID, Info: InfoID}
	next := InfoID + 1
	for range fonts {
		p.Fonts = append(p.Fonts, next)
		next++
	}
	stride := 2
	if images {
		stride = 3
	}
	p.PageIDs = make([]PageIDs, pages)
	for i := range p.PageIDs {
		ids := PageIDs{Page: next, Content: next + stride - 1}
		if images {
			ids.Image = next + 1
		}
		p.PageIDs[i] = ids
		next += stride
	}
	p.Highest = next - 1
	return p
}

// Objects builds every object of the document, indexed so that objects[i].ID == i+1.
func (d *Document) Objects() ([]Object, Plan, error) {
	if len(d.Pages) == 0 {
		return nil, Plan{}, errors.New("pdfwriter: document has no pages")
	}
	images := d.Pages[0].Image != nil
	for i, p := range d.Pages {
		if (p.Image != nil) != images {
			return nil, Plan{}, fmt.Errorf("%w (page %d)", errMixedPages, i+1)
		}
		if p.Image != nil && len(p.Image.Data) == 0 {
			return nil, Plan{}, fmt.Errorf("pdfwriter: page %d image has no data", i+1)
		}
	}

	plan := PlanIDs(len(d.Fonts), len(d.Pages), images)
	objects := make([]Object, plan.Highest)
	put := func(o Object) { objects[o.ID-1] = o }

	put(NewObject(plan.Catalog, Text("<< /Type /Catalog /Pages "+Ref(plan.Pages)+" >>")))

	kids := make([]string, len(plan.PageIDs))
	for i, ids := range plan.PageIDs {
		kids[i] = Ref(ids.Page)
	}
	put(NewObject(plan.Pages, Text(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids)))))

	put(d.infoObject(plan.Info))

	fontRes := make([]string, len(d.Fonts))
	for i, f := range d.Fonts {
		id := plan.Fonts[i]
		put(NewObject(id, Text("<< /Type /Font /Subtype /Type1 /BaseFont /"+f.BaseFont+" /Encoding /WinAnsiEncoding >>")))
		fontRes[i] = "/" + f.Resource + " " + Ref(id)
	}

	for i, p := range d.Pages {
		ids := plan.PageIDs[i]
		var res []string
		if len(fontRes) > 0 {
			res = append(res, "/Font << "+strings.Join(fontRes, " ")+" >>")
		}
		if p.Image != nil {
			res = append(res, "/XObject << /"+ImageResource+" "+Ref(ids.Image)+" >>")
			put(imageObject(ids.Image, p.Image))
		}
		page := fmt.Sprintf("<< /Type /Page /Parent %s /MediaBox [0 0 %s %s] /Resources << %s >> /Contents %s >>",
			Ref(plan.Pages), FormatNumber(p.Width), FormatNumber(p.Height), strings.Join(res, " "), Ref(ids.Content))
		put(NewObject(ids.Page, Text(page)))
		put(StreamObject(ids.Content, "", p.Content))
	}
	return objects, plan, nil
}

// Bytes builds and assembles the document.
func (d *Document) Bytes() ([]byte, error) {
	objects, plan, err := d.Objects()
	if err != nil {
		return nil, err
	}
	return Assemble(objects, plan.Catalog, plan.Info)
}

func (d *Document) infoObject(id int) Object {
	payload := []Fragment{Text("<<")}
	add := func(key, value string) {
		if value == "" {
			return
		}
		payload = append(payload, Text(" /"+key+" "), Raw(TextString(value)))
	}
	add("Title", d.Info.Title)
	add("Author", d.Info.Author)
	add("Subject", d.Info.Subject)
	add("Keywords", d.Info.Keywords)
	add("Creator", d.Info.Creator)
	add("Producer", d.Info.Producer)
	if !d.Info.CreationDate.IsZero() {
		add("CreationDate", dateString(d.Info.CreationDate))
	}
	payload = append(payload, Text(" >>"))
	return NewObject(id, payload...)
}

func imageObject(id int, img *Image) Object {
	filter := img.Filter
	if filter == "" {
		filter = "DCTDecode"
	}
	cs := img.ColorSpace
	if cs == "" {
		cs = "DeviceRGB"
	}
	dict := fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /%s /BitsPerComponent 8 /Filter /%s",
		img.Width, img.Height, cs, filter)
	return StreamObject(id, dict, img.Data)
}

func dateString(t time.Time) string {
	return "D:" + t.UTC().Format("20060102150405") + "Z"
}
