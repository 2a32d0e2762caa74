// Package schemas embeds the JSON schemas for preflight's file formats.
package schemas

import _ "embed"

//go:embed profile.schema.json
var ProfileSchemaJSON string
