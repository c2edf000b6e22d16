// Package schemas embeds the JSON Schemas for the data files handled by roster-photos.
package schemas

import _ "embed"

// PlayersFile is the file name of the player catalog schema.
const PlayersFile = "players.schema.json"

// Players is the JSON Schema of the player catalog.
//
//go:embed players.schema.json
var Players string
