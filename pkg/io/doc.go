// Package io reads kitchen documents and writes solved layouts.
//
// # Input Document
//
// A document declares the room and the catalog. It is JSON, or TOML with the
// same keys when the file name ends in .toml:
//
//	{
//	  "constants": {"min_width": 10, "max_width": 100},
//	  "kitchen_parts": [
//	    {"name": "base", "width": 300, "depth": 60,
//	     "position": {"x": 0, "y": 0, "angle": 0, "group": 1}}
//	  ],
//	  "available_fixtures": [
//	    {"name": "sink", "type": "sink", "zone": "wet", "width_min": 40,
//	     "width_max": 60, "position_bottom": true, "worktop": true}
//	  ],
//	  "zones": [{"name": "wet", "optimize": true, "color": "#0077ff"}],
//	  "placement_rules": [
//	    {"type": "exclude", "area": "group_section", "attribute_name": "type",
//	     "attribute_value": "sink", "group": 1, "section_start": 0, "section_end": 60}
//	  ],
//	  "relation_rules": [
//	    {"rule_type": "min_distance", "first_type": "sink", "second_type": "stove", "distance": 60}
//	  ]
//	}
//
// Use [Load] for files and [Read] for any reader. [Document.Validate]
// reports configuration errors (malformed values) before reference errors
// (names that point nowhere); both list every problem found.
// [Document.Input] converts a valid document into preprocessing input.
//
// # Output Document
//
// A [Layout] maps each part name to its padding and the fixtures placed on
// it in order:
//
//	{
//	  "base": {"padding": 0, "fixtures": [{"fixture": "sink", "width": 60}]}
//	}
//
// [ExportLayout] builds it from a solved kitchen; [Layout.Apply] lays it
// back onto an unsolved one.
package io
