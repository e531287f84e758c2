package embed

import (
	"embed"
	"io/fs"
)

// publicFS contains the embedded public files (the chat front-end)
//
//go:embed all:public
var publicFS embed.FS

// GetPublicFS returns the embedded public filesystem
// This allows serving the front-end without external files
func GetPublicFS() (fs.FS, error) {
	return fs.Sub(publicFS, "public")
}

// Index returns the embedded front page
func Index() ([]byte, error) {
	return publicFS.ReadFile("public/index.html")
}

// HasEmbeddedFiles checks if public files are embedded
func HasEmbeddedFiles() bool {
	entries, err := publicFS.ReadDir("public")
	return err == nil && len(entries) > 0
}
