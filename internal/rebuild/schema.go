package rebuild

import (
	"sync"

	"github.com/hamba/avro/v2"
)

// SchemaVersion identifies the journal layout. Any change to the record
// schema below is a breaking format change and requires a new version
// identifier, never an in-place edit.
const SchemaVersion = "rebuild/v1"

// schemaMetadataKey is the OCF metadata key carrying SchemaVersion.
const schemaMetadataKey = "corpusgen.schema"

// rawSchema is the nested record schema of the journal. The top-level type
// is shard_result; rebuild_information, metadata_record and identification
// are defined inline at first use.
const rawSchema = `
{
  "type": "record",
  "name": "shard_result",
  "fields": [
    {"name": "shard_id", "type": "long"},
    {"name": "rebuild_info", "type": {"type": "array", "items": {
      "type": "record",
      "name": "rebuild_information",
      "fields": [
        {"name": "shard_id", "type": "long"},
        {"name": "record_id", "type": "string"},
        {"name": "line_start", "type": "long"},
        {"name": "line_end", "type": "long"},
        {"name": "loc_in_shard", "type": "long"},
        {"name": "metadata", "type": {
          "type": "record",
          "name": "metadata_record",
          "fields": [
            {"name": "identification", "type": {
              "type": "record",
              "name": "identification",
              "fields": [
                {"name": "label", "type": "string"},
                {"name": "prob", "type": "float"}
              ]
            }},
            {"name": "annotation", "type": ["null", {"type": "array", "items": "string"}]},
            {"name": "sentence_identifications", "type": {"type": "array", "items": [
              "null",
              "identification"
            ]}}
          ]
        }}
      ]
    }}}
  ]
}
`

// Schema returns the parsed journal schema. The schema is parsed exactly
// once and shared read-only by every journal writer.
var Schema = sync.OnceValue(func() avro.Schema {
	return avro.MustParse(rawSchema)
})
