// Package entities defines core domain models and data structures.
package entities

// Artifact represents a downloaded archive on local disk
type Artifact struct {
	Name     string
	Version  string
	Platform Platform
	Path     string
	URL      string
	Type     string // "archive", "signature"
}
