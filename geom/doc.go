// Package geom provides the floating point geometry shared by the patch
// viewport: points, rectangles and the affine transform between the data
// coordinate system and the display coordinate system.
//
// The two systems differ in axis order. In data space the primary axis (x)
// points down the screen and the secondary axis (y) points right. In display
// space x points right and y points down, with the origin in the top-left
// corner. [DataToDisplay] and [DisplayToData] map between them.
package geom
