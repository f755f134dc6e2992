package typeid

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

func TestFullyQualifiedIdentifier_Deterministic(t *testing.T) {
	ns := randomString(10)
	name := randomString(10)

	first := FullyQualifiedIdentifier(ns, name, NamespaceRelationType)
	second := FullyQualifiedIdentifier(ns, name, NamespaceRelationType)

	assert.Equal(t, first, second)
	assert.Equal(t, uuid.Version(5), first.Version())
}

func TestFullyQualifiedIdentifier_LongInputs(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		typeName  string
	}{
		{name: "long namespace", namespace: randomString(1000), typeName: randomString(10)},
		{name: "long type name", namespace: randomString(10), typeName: randomString(1000)},
		{name: "long namespace and type name", namespace: randomString(1000), typeName: randomString(1000)},
		{name: "empty strings", namespace: "", typeName: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := FullyQualifiedIdentifier(tt.namespace, tt.typeName, NamespaceRelationType)

			assert.Len(t, id[:], 16)
			assert.NotEqual(t, uuid.Nil, id)
			assert.Equal(t, id, FullyQualifiedIdentifier(tt.namespace, tt.typeName, NamespaceRelationType))
		})
	}
}

func TestFullyQualifiedIdentifier_LongInputsDifferInLastCharacter(t *testing.T) {
	prefix := randomString(999)

	a := FullyQualifiedIdentifier(prefix+"a", "type", NamespaceEntityType)
	b := FullyQualifiedIdentifier(prefix+"b", "type", NamespaceEntityType)

	assert.NotEqual(t, a, b)
}

func TestFullyQualifiedIdentifier_SeparatorInNames(t *testing.T) {
	a := FullyQualifiedIdentifier("a__b", "c", NamespaceComponent)
	b := FullyQualifiedIdentifier("a", "b__c", NamespaceComponent)

	assert.NotEqual(t, a, b)
}

func TestFullyQualifiedIdentifier_CategoriesDoNotCollide(t *testing.T) {
	seen := make(map[uuid.UUID]Kind)
	for _, kind := range []Kind{Component, EntityType, RelationType, FlowType} {
		id := New(kind, "core", "value").FullyQualifiedIdentifier()
		if other, ok := seen[id]; ok {
			t.Fatalf("%s collides with %s", kind, other)
		}
		seen[id] = kind
	}
}

func TestFullyQualifiedIdentifier_Properties(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		ns := rapid.String().Draw(r, "namespace")
		name := rapid.String().Draw(r, "type_name")
		otherName := rapid.String().Draw(r, "other_type_name")

		id := FullyQualifiedIdentifier(ns, name, NamespaceRelationType)
		if id != FullyQualifiedIdentifier(ns, name, NamespaceRelationType) {
			r.Fatalf("derivation is not deterministic for %q/%q", ns, name)
		}
		if otherName != name && id == FullyQualifiedIdentifier(ns, otherName, NamespaceRelationType) {
			r.Fatalf("collision between %q and %q", name, otherName)
		}
	})
}

func TestTypeID_Equality(t *testing.T) {
	a := NewRelationTypeID("ns", "Likes")
	b := NewRelationTypeID("ns", "Likes")
	c := NewEntityTypeID("ns", "Likes")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, FullyQualifiedIdentifier("ns", "Likes", NamespaceRelationType), a.FullyQualifiedIdentifier())
}

func TestKind_TextRoundTrip(t *testing.T) {
	for _, kind := range []Kind{Component, EntityType, RelationType, FlowType} {
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseKind("widget")
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, Kind(42).Namespace())
}

func TestTypeID_JSON(t *testing.T) {
	ty := NewFlowTypeID("flows", "generic_flow")

	data, err := json.Marshal(ty)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"kind":"flow_type"`))

	var decoded TypeID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ty, decoded)
}
