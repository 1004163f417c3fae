// Package validation validates configuration structs through struct tags,
// turning validator failures into the application error type.
package validation
