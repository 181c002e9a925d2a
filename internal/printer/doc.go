// Package printer renders a dependency ordering for human or machine
// consumption.
//
// Four fixed formats are supported (plain, table, json, yaml) plus free-form
// per-node templates via RenderTemplate. Rendering is a pure sink: it never
// reorders, filters or mutates the ordering it is given.
package printer
