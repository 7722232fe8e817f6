// Package imaging provides the thin image I/O and cropping collaborators
// around the detection core: decoding and caching image files, cropping by
// detected bounding box or by fixed proportional regions, saving results, and
// drawing debug overlays.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Crop regions use an
// inclusive top-left and exclusive bottom-right corner.
//
// # Thread Safety
//
// The Cache type is safe for concurrent use. The remaining operations are
// stateless pure functions over immutable inputs and can run concurrently.
package imaging
