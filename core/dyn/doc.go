// Package dyn invokes members of values whose types are not known at
// compile time: fields and property-style accessors, indexers, methods,
// functions, constructors, conversions and events.
//
// Every operation is described by a BinderHash. The first time a shape is
// seen the Engine builds a CallSite for it and caches the site in a
// partition of a cache.Registry; later calls with the same shape reuse the
// site. Inside a site, the resolved member for each runtime type and
// argument type combination is memoized as well, so repeated calls only pay
// for a map lookup and the reflective call itself.
//
// Go has no overloading, properties, events or static members. They are
// modeled as follows:
//
//   - an overload set is the method of that name plus every method
//     registered for the type (or an interface it implements) through
//     Engine.RegisterMethod;
//   - property reads try the field, a map entry, Name() and GetName();
//     writes try the field, a map entry and SetName(v);
//   - an event is a field of type Event or a pair of AddName/RemoveName
//     methods;
//   - static members are registered with RegisterFunc and RegisterVar and
//     addressed through Static.
//
// The package-level functions use the engine returned by Default.
package dyn
