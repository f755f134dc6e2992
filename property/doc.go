// Package property implements the schema-less property model shared by every entity,
// relation and flow instance.
//
// A Value is a JSON-like tagged union over null, bool, unsigned integer, signed
// integer, float, string, array and object. Typed accessors only succeed on an exact
// kind match: an unsigned integer is never returned by AsInt or AsFloat, and strings
// are never parsed as numbers.
//
// Instances is the per-instance property store. Its accessors report a missing
// property and a property of another kind the same way, as an absent result:
//
//	props := property.NewInstances()
//	props.Set("weight", property.Float(0.5))
//
//	w, ok := props.AsFloat("weight") // 0.5, true
//	_, ok = props.AsUint("weight")   // 0, false
//
// Callers that need to tell the two cases apart use Require, which returns
// ErrPropertyNotFound or a *TypeMismatchError.
package property
