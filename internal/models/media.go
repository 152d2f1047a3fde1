// internal/models/media.go
package models

// Media is an uploaded asset referenced by logos and font files.
type Media struct {
	ID       string `json:"id" yaml:"id"`
	URL      string `json:"url" yaml:"url"`
	Alt      string `json:"alt,omitempty" yaml:"alt,omitempty"`
	MimeType string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
}
