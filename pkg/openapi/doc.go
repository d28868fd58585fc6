// Package openapi imports form fields from the request body of an OpenAPI
// operation. Documents are loaded from files, an fs.FS or HTTP and parsed
// with kin-openapi; the resulting fields are plain model definitions that
// can be edited and saved like hand-built ones.
package openapi
