package formbuilder

import (
	"io/fs"

	"github.com/goliatone/go-formbuilder/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in vanilla renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// StylesheetFS exposes the default stylesheet so applications can serve it
// next to forms rendered without inline CSS.
//
// Typical mount:
//
//	mux.Handle("/formbuilder/",
//	  http.StripPrefix("/formbuilder/",
//	    http.FileServerFS(formbuilder.StylesheetFS()),
//	  ),
//	)
func StylesheetFS() fs.FS {
	return vanilla.AssetsFS()
}
