package constants

// Fixed option set sent with every OCR.space request. Engine 2 handles the
// dense small print on blister packs better than engine 1.
const (
	OCRLanguage          = "eng"
	OCREngine            = "2"
	OCRScale             = "true"
	OCRDetectOrientation = "true"
)

// SupportedImageExtensions holds the image formats the OCR provider accepts
// by URL.
var SupportedImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"bmp":  {},
	"tiff": {},
}
