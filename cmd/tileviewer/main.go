// Command tileviewer streams and traverses Google's Photorealistic 3D
// Tiles hierarchy headlessly: cobra commands live in internal/appcmd,
// this is just the entrypoint.
package main

import "github.com/geo3d/tileviewer/internal/appcmd"

func main() {
	appcmd.Execute()
}
