// Package schema loads field schemas.
//
// The canonical format is comma separated text, one field per line:
//
//	fieldName[,multivalued][,required]
//
// where multivalued and required are the literals "true" or "false"; an absent
// or blank flag means false. YAML and CUE documents describing the same fields
// are accepted as alternates, chosen by file extension.
//
// A schema is always fully materialized before it is returned.
package schema
