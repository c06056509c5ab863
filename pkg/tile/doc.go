// Package tile renders a text watermark into a reusable tile and lays it over
// images as a rotated, staggered field.
//
// A Tile is built once per text and style with Build and can then be applied
// to any number of images, from any number of goroutines:
//
//	t, err := tile.Build("CONFIDENTIAL", tile.DefaultStyle())
//	if err != nil {
//		return err
//	}
//	img, err := tile.Decode(r)
//	if err != nil {
//		return err
//	}
//	out, err := t.Apply(img)
package tile
