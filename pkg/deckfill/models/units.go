package models

import "math"

// EMUPerPixel is the number of EMUs (English Metric Units) per pixel at 96 DPI.
// 1 inch = 914400 EMU, 1 inch = 96 pixels at 96 DPI
// Therefore: 914400 / 96 = 9525 EMU per pixel
const EMUPerPixel = 9525

// EMUPerPoint is the number of EMUs per typographic point.
// 1 inch = 914400 EMU, 1 inch = 72 points, so 914400 / 72 = 12700.
const EMUPerPoint = 12700

// maxDigitWidth is the pixel width of the widest digit of the default
// workbook font (Calibri 11), used by the OOXML column width formula.
const maxDigitWidth = 7.0

// PixelsToEMU converts pixels at 96 DPI to EMU.
func PixelsToEMU(px int) int64 {
	return int64(px) * EMUPerPixel
}

// PointsToEMU converts typographic points to EMU.
func PointsToEMU(pt float64) int64 {
	return int64(math.Round(pt * EMUPerPoint))
}

// ColWidthToEMU converts a spreadsheet column width, expressed in character
// units of the default font, to EMU. This follows the OOXML column width
// formula: px = Trunc(((256*chars + Trunc(128/MDW)) / 256) * MDW).
func ColWidthToEMU(chars float64) int64 {
	px := math.Trunc((256*chars + math.Trunc(128/maxDigitWidth)) / 256 * maxDigitWidth)
	return PixelsToEMU(int(px))
}
