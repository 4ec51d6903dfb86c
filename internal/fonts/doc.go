// Package fonts discovers caption font assets on disk.
//
// A Catalog is built once from the configured fonts directory and handed to
// validation and rendering code as an immutable value. ResolveInstalledNames
// cross-references the catalog with fontconfig for diagnostics only.
package fonts
