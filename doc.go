// Package kiln provides a definition-driven object factory for Go.
//
// A definition names a registered type, the arguments for its constructor or
// static factory method, the method calls and property assignments applied
// after construction, and a caching lifetime. Definitions live in a
// [DefinitionStore] under string keys. An object parameter holds the key of
// another definition, so whole object graphs are described as data and
// resolved on demand.
//
// # Quick Start
//
//	reg := kiln.NewRegistry()
//	reg.Register("Widget", kiln.Constructor(NewWidget))
//
//	def, _ := kiln.NewObjectDefinition("Widget")
//	def.AddParameter("int", kiln.Scalar("5"))
//	def.AddParameter("string", kiln.Scalar("hi"))
//
//	f := kiln.NewFactory(reg, kiln.NewMemoryStore())
//	f.SaveDefinition("w1", def)
//
//	w, err := kiln.Create[*Widget](f, "w1")
//
// # Type names
//
// Parameter types are the scalars bool, byte, sbyte, short, ushort, int,
// uint, long, ulong, char, float, double and string, each with an array form
// such as int[]. The sentinel null passes a nil argument. object and every
// registered type name take definition keys as values; object[];Shape
// declares an array of keys whose constructed elements must be assignable to
// the registered type Shape.
//
// # Lifetimes
//
// [LifetimeInstance] (default): a new object on every request.
//
// [LifetimeOncePerTopLevelObject]: one object per outermost
// [Factory.CreateDefinedObject] call, shared by every reference inside it.
//
// [LifetimeFactory]: one object for the lifetime of the [Factory], until
// [Factory.ClearFactoryLifetimeObjects].
//
// # Cycles
//
// A key requested again while it is still being resolved fails with an
// [InstantiationCycleError] naming the chain, for example a -> b -> a.
// Keys served from a lifetime cache never count as cycles.
package kiln
