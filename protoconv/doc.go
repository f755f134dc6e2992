// Package protoconv converts property stores to and from protocol buffer values.
//
// # Struct Conversion
//
// ToStruct and FromStruct map a property.Instances onto a google.protobuf.Struct
// and back, so instances can travel in any proto message that embeds a Struct.
// The Struct type has a single number kind, so the round trip normalises numbers:
//
//	props := property.NewInstances()
//	props.Set("count", property.Int(3))
//	props.Set("ratio", property.Float(2))
//	back := protoconv.FromStruct(protoconv.ToStruct(props))
//	// back["count"] is Uint(3), back["ratio"] is Uint(2)
//
// # Message Conversion
//
// FromMessage reads the populated fields of an arbitrary message through
// protoreflect. Field names become property names; identifier fields can be
// excluded with the skip list:
//
//	props, err := protoconv.FromMessage(msg, "id", "created_at")
package protoconv
