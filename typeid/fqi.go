package typeid

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// separator delimits the namespace and type name segments of the hashed name.
const separator = "__"

// FullyQualifiedIdentifier derives a version 5 UUID from the category namespace,
// the namespace and the type name.
//
// The hashed name is "<len>:<namespace>__<len>:<type_name>". The length prefixes keep
// the encoding injective, so ("a__b", "c") and ("a", "b__c") hash different inputs.
// The output is 16 bytes regardless of the input lengths. There is no inverse.
func FullyQualifiedIdentifier(namespace, typeName string, category uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(category, []byte(qualifiedName(namespace, typeName)))
}

func qualifiedName(namespace, typeName string) string {
	var b strings.Builder
	b.Grow(len(namespace) + len(typeName) + len(separator) + 42)
	b.WriteString(strconv.Itoa(len(namespace)))
	b.WriteByte(':')
	b.WriteString(namespace)
	b.WriteString(separator)
	b.WriteString(strconv.Itoa(len(typeName)))
	b.WriteByte(':')
	b.WriteString(typeName)
	return b.String()
}
