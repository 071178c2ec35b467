package prisma

import "strings"

// typeMap maps the model's logical attribute types to Prisma scalars. The
// target language has a single temporal scalar and a single string scalar,
// so the text/uuid/email/url family and the date/datetime/timestamp family
// each collapse onto one name.
var typeMap = map[string]string{
	"string":    "String",
	"text":      "String",
	"int":       "Int",
	"integer":   "Int",
	"bigint":    "BigInt",
	"float":     "Float",
	"decimal":   "Decimal",
	"boolean":   "Boolean",
	"bool":      "Boolean",
	"date":      "DateTime",
	"datetime":  "DateTime",
	"timestamp": "DateTime",
	"uuid":      "String",
	"cuid":      "String",
	"json":      "Json",
	"email":     "String",
	"url":       "String",
}

// MapType maps a logical type to its Prisma scalar. Unknown or empty types
// default to String.
func MapType(logical string) string {
	if mapped, ok := typeMap[strings.ToLower(logical)]; ok {
		return mapped
	}
	return "String"
}
