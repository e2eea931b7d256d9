package view

import (
	"image"

	"github.com/soocke/virtual-fence-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// FencePreview shows the rendered scene and the last captured mask.
type FencePreview interface {
	SetPreview(png []byte)
	SetMask(png []byte)
	Reset()
	// Scene is the label that receives mouse input.
	Scene() *LabelWidget
}

// SceneInset is the offset in pixels of the scene image inside its label: the
// border only, since the label has no padding or highlight ring.
const SceneInset = sceneBorder

const sceneBorder = 1

type fencePreview struct {
	sceneLabel *LabelWidget
	maskLabel  *LabelWidget
	scenePhoto *Img
	maskPhoto  *Img
}

// NewFencePreview creates the preview labels and grids them in row. The scene spans
// columns 0-3 and the mask thumbnail sits in column 4.
func NewFencePreview(row int) FencePreview {
	sceneBytes := images.EncodePNG(image.NewRGBA(image.Rect(0, 0, 320, 180)))
	maskBytes := images.EncodePNG(image.NewGray(image.Rect(0, 0, 160, 90)))
	v := &fencePreview{scenePhoto: NewPhoto(Data(sceneBytes)), maskPhoto: NewPhoto(Data(maskBytes))}
	v.sceneLabel = Label(Image(v.scenePhoto), Borderwidth(sceneBorder), Relief("sunken"), Cursor("crosshair"),
		Padx(0), Pady(0), Highlightthickness(0))
	v.maskLabel = Label(Image(v.maskPhoto), Borderwidth(1), Relief("sunken"))
	Grid(v.sceneLabel, Row(row), Column(0), Columnspan(4), Sticky("nw"), Padx("0.4m"), Pady("0.4m"))
	Grid(v.maskLabel, Row(row), Column(4), Sticky("n"), Padx("0.4m"), Pady("0.4m"))
	return v
}

func (v *fencePreview) Scene() *LabelWidget { return v.sceneLabel }

// SetPreview swaps the scene photo, deleting the previous one so old frames are
// not retained by Tk.
func (v *fencePreview) SetPreview(png []byte) {
	if v.sceneLabel == nil || len(png) == 0 {
		return
	}
	if v.scenePhoto != nil {
		v.scenePhoto.Delete()
	}
	v.scenePhoto = NewPhoto(Data(png))
	v.sceneLabel.Configure(Image(v.scenePhoto))
}

func (v *fencePreview) SetMask(png []byte) {
	if v.maskLabel == nil || len(png) == 0 {
		return
	}
	if v.maskPhoto != nil {
		v.maskPhoto.Delete()
	}
	v.maskPhoto = NewPhoto(Data(png))
	v.maskLabel.Configure(Image(v.maskPhoto))
}

func (v *fencePreview) Reset() {
	v.SetMask(images.EncodePNG(image.NewGray(image.Rect(0, 0, 160, 90))))
}
